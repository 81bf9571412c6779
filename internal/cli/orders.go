package cli

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"github.com/sliramanoel/venda/internal/model"
	"github.com/sliramanoel/venda/internal/service"
	"github.com/spf13/cobra"
)

const cliActor = "cli"

func newOrdersCmd() *cobra.Command {
	ordersCmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect and update orders",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		RunE:  runOrdersList,
	}
	listCmd.Flags().String("status", "", "Filter by status (pending, paid, shipped, delivered)")
	listCmd.Flags().Int("page", 1, "Page number")
	listCmd.Flags().Int("limit", service.DefaultPageSize, "Orders per page")

	statusCmd := &cobra.Command{
		Use:   "status [order-id-or-number] [status]",
		Short: "Move an order to a new status",
		Args:  cobra.ExactArgs(2),
		RunE:  runOrdersStatus,
	}

	historyCmd := &cobra.Command{
		Use:   "history [order-id-or-number]",
		Short: "Show the status changes of an order",
		Args:  cobra.ExactArgs(1),
		RunE:  runOrdersHistory,
	}

	ordersCmd.AddCommand(listCmd, statusCmd, historyCmd)
	return ordersCmd
}

func withOrders(cmd *cobra.Command, fn func(orders service.OrderService) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	return fn(service.NewOrderService(service.NewOrderStore(db)))
}

func runOrdersList(cmd *cobra.Command, args []string) error {
	status, _ := cmd.Flags().GetString("status")
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")

	return withOrders(cmd, func(orders service.OrderService) error {
		result, err := orders.ListOrders(cmd.Context(), service.ListOrdersRequest{
			Status: model.OrderStatus(status),
			Page:   page,
			Limit:  limit,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(result.Orders) == 0 {
			fmt.Fprintln(out, "No orders found.")
			return nil
		}

		table := tablewriter.NewWriter(out)
		table.Header("Order", "Customer", "Email", "Qty", "Total", "Status", "Created")
		for _, o := range result.Orders {
			err := table.Append(
				o.OrderNumber,
				o.Name,
				o.Email,
				fmt.Sprint(o.Quantity),
				"R$ "+decimal.NewFromFloat(o.TotalPrice).StringFixed(2),
				string(o.Status),
				o.CreatedAt.Format("2006-01-02 15:04"),
			)
			if err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}

		fmt.Fprintf(out, "Page %d, %d of %d orders\n", result.Page, len(result.Orders), result.Total)
		return nil
	})
}

func runOrdersStatus(cmd *cobra.Command, args []string) error {
	return withOrders(cmd, func(orders service.OrderService) error {
		ctx := service.WithActor(cmd.Context(), cliActor)
		order, err := orders.UpdateStatus(ctx, args[0], model.OrderStatus(args[1]))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Order %s is now %s\n", order.OrderNumber, order.Status)
		return nil
	})
}

func runOrdersHistory(cmd *cobra.Command, args []string) error {
	return withOrders(cmd, func(orders service.OrderService) error {
		events, err := orders.History(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No status changes recorded.")
			return nil
		}

		table := tablewriter.NewWriter(out)
		table.Header("When", "From", "To", "By")
		for _, e := range events {
			if err := table.Append(e.ChangedAt.Format("2006-01-02 15:04:05"), string(e.FromStatus), string(e.ToStatus), e.ChangedBy); err != nil {
				return err
			}
		}
		return table.Render()
	})
}

package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sliramanoel/venda/internal/pix"
	"github.com/spf13/cobra"
)

var fieldNames = map[string]string{
	"00": "Payload format",
	"26": "Merchant account",
	"52": "Merchant category",
	"53": "Currency",
	"54": "Amount",
	"58": "Country",
	"59": "Merchant name",
	"60": "Merchant city",
	"62": "Additional data",
	"63": "CRC16",
}

var templateFieldNames = map[string]map[string]string{
	"26": {"00": "GUI", "01": "PIX key"},
	"62": {"05": "Transaction id"},
}

func newPixCmd() *cobra.Command {
	pixCmd := &cobra.Command{
		Use:   "pix",
		Short: "Inspect and build PIX BR-Codes",
	}

	decodeCmd := &cobra.Command{
		Use:   "decode [payload]",
		Short: "Print the fields of a BR-Code and verify its CRC",
		Args:  cobra.ExactArgs(1),
		RunE:  runPixDecode,
	}

	generateCmd := &cobra.Command{
		Use:   "generate [order-id] [amount]",
		Short: "Build the local test-mode BR-Code for an order",
		Args:  cobra.ExactArgs(2),
		RunE:  runPixGenerate,
	}
	generateCmd.Flags().String("merchant", "", "Merchant name (default payment.merchant_name)")

	pixCmd.AddCommand(decodeCmd, generateCmd)
	return pixCmd
}

func runPixDecode(cmd *cobra.Command, args []string) error {
	fields, err := pix.Decode(args[0])
	if err != nil && !errors.Is(err, pix.ErrChecksum) {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("ID", "Field", "Value")
	for _, f := range fields {
		if err := table.Append(f.ID, fieldNames[f.ID], f.Value); err != nil {
			return err
		}
		names, template := templateFieldNames[f.ID]
		if !template {
			continue
		}
		sub, subErr := f.Sub()
		if subErr != nil {
			continue
		}
		for _, s := range sub {
			if err := table.Append(f.ID+"."+s.ID, names[s.ID], s.Value); err != nil {
				return err
			}
		}
	}
	if renderErr := table.Render(); renderErr != nil {
		return renderErr
	}

	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "CRC OK")
	return nil
}

func runPixGenerate(cmd *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil || amount < 0 {
		return fmt.Errorf("invalid amount %q", args[1])
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	gen := pix.Generator{
		MerchantName: cfg.Payment.MerchantName,
		MerchantCity: cfg.Payment.MerchantCity,
		KeyDomain:    cfg.Payment.PixKeyDomain,

		FoldMerchantName: cfg.Payment.FoldMerchantName,
	}
	if merchant, _ := cmd.Flags().GetString("merchant"); merchant != "" {
		gen.MerchantName = merchant
	}

	fmt.Fprintln(cmd.OutOrStdout(), gen.Payload(args[0], amount))
	return nil
}

package i18n

// Validation reasons
const (
	NameTooShort    Key = "validation.name.too_short"
	NameNeedSurname Key = "validation.name.need_surname"
	NameInvalid     Key = "validation.name.invalid"
	NameLettersOnly Key = "validation.name.letters_only"

	PhoneLength       Key = "validation.phone.length"
	PhoneInvalidDDD   Key = "validation.phone.ddd"
	PhoneMobilePrefix Key = "validation.phone.mobile_prefix"
	PhoneLandline     Key = "validation.phone.landline"
	PhoneInvalid      Key = "validation.phone.invalid"

	EmailFormat     Key = "validation.email.format"
	EmailDisposable Key = "validation.email.disposable"
	EmailTooShort   Key = "validation.email.too_short"
	EmailInvalid    Key = "validation.email.invalid"
	EmailTestLocal  Key = "validation.email.test"

	CEPInvalid   Key = "validation.cep.invalid"
	StateInvalid Key = "validation.state.invalid"

	FieldRequired Key = "validation.field.required"
	FieldMin      Key = "validation.field.min"
	FieldMax      Key = "validation.field.max"
	FieldGTE      Key = "validation.field.gte"
	FieldOneOf    Key = "validation.field.oneof"
	FieldInvalid  Key = "validation.field.invalid"
)

// Request errors
const (
	ErrInvalidBody        Key = "error.invalid_body"
	ErrValidation         Key = "error.validation"
	ErrOrderNotFound      Key = "error.order_not_found"
	ErrOrderIDRequired    Key = "error.order_id_required"
	ErrInvalidStatus      Key = "error.invalid_status"
	ErrInternal           Key = "error.internal"
	ErrInvalidSignature   Key = "error.invalid_signature"
	ErrInvalidPayload     Key = "error.invalid_payload"
	ErrInvalidCredentials Key = "error.invalid_credentials"
	ErrTokenMissing       Key = "error.token_missing"
	ErrTokenInvalid       Key = "error.token_invalid"
	ErrForbidden          Key = "error.forbidden"
	ErrRateLimited        Key = "error.rate_limited"
	ErrRegistrationClosed Key = "error.registration_closed"
	ErrEmailTaken         Key = "error.email_taken"
)

type translation struct {
	pt string
	en string
}

var catalog = map[Key]translation{
	NameTooShort:    {"Nome muito curto", "Name is too short"},
	NameNeedSurname: {"Informe nome e sobrenome", "Please provide first and last name"},
	NameInvalid:     {"Nome inválido", "Invalid name"},
	NameLettersOnly: {"Nome deve conter apenas letras", "Name must contain letters only"},

	PhoneLength:       {"Telefone deve ter 10 ou 11 dígitos", "Phone must have 10 or 11 digits"},
	PhoneInvalidDDD:   {"DDD %s inválido", "Invalid area code %s"},
	PhoneMobilePrefix: {"Celular deve começar com 9", "Mobile numbers must start with 9"},
	PhoneLandline:     {"Telefone fixo inválido", "Invalid landline number"},
	PhoneInvalid:      {"Número de telefone inválido", "Invalid phone number"},

	EmailFormat:     {"Formato de email inválido", "Invalid email format"},
	EmailDisposable: {"Emails temporários não são permitidos", "Disposable emails are not allowed"},
	EmailTooShort:   {"Email muito curto", "Email is too short"},
	EmailInvalid:    {"Email inválido", "Invalid email"},
	EmailTestLocal:  {"Email de teste não permitido", "Test emails are not allowed"},

	CEPInvalid:   {"CEP deve ter 8 dígitos", "CEP must have 8 digits"},
	StateInvalid: {"UF inválida", "Invalid state"},

	FieldRequired: {"Campo obrigatório", "This field is required"},
	FieldMin:      {"Valor mínimo: %s", "Minimum value: %s"},
	FieldMax:      {"Valor máximo: %s", "Maximum value: %s"},
	FieldGTE:      {"Deve ser maior ou igual a %s", "Must be greater than or equal to %s"},
	FieldOneOf:    {"Valor deve ser um de: %s", "Value must be one of: %s"},
	FieldInvalid:  {"Valor inválido", "Invalid value"},

	ErrInvalidBody:        {"Corpo da requisição inválido", "Invalid request body"},
	ErrValidation:         {"Dados inválidos", "Invalid data"},
	ErrOrderNotFound:      {"Pedido não encontrado", "Order not found"},
	ErrOrderIDRequired:    {"order_id é obrigatório", "order_id is required"},
	ErrInvalidStatus:      {"Status inválido", "Invalid status"},
	ErrInternal:           {"Erro interno do servidor", "Internal server error"},
	ErrInvalidSignature:   {"Assinatura inválida", "Invalid signature"},
	ErrInvalidPayload:     {"Payload JSON inválido", "Invalid JSON payload"},
	ErrInvalidCredentials: {"Email ou senha incorretos", "Invalid email or password"},
	ErrTokenMissing:       {"Token de autenticação não fornecido", "Authentication token not provided"},
	ErrTokenInvalid:       {"Token inválido ou expirado", "Invalid or expired token"},
	ErrForbidden:          {"Acesso negado", "Access denied"},
	ErrRateLimited:        {"Muitas requisições, tente novamente em instantes", "Too many requests, try again shortly"},
	ErrRegistrationClosed: {"Cadastro de administradores fechado", "Admin registration is closed"},
	ErrEmailTaken:         {"Email já cadastrado", "Email already registered"},
}

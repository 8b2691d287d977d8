package wave

import (
	"time"

	"github.com/noah-isme/wave-go/webhook"
)

// Currency is an ISO 4217 code.
type Currency string

const (
	CurrencyXOF Currency = "XOF"
	CurrencyGHS Currency = "GHS"
	CurrencySLL Currency = "SLL"
	CurrencyUGX Currency = "UGX"
	CurrencyUSD Currency = "USD"
)

// PageInfo is the cursor block of paginated responses.
type PageInfo struct {
	StartCursor *string `json:"start_cursor,omitempty"`
	EndCursor   string  `json:"end_cursor,omitempty"`
	HasNextPage bool    `json:"has_next_page"`
}

// Balance

type Balance struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

type BalanceParams struct {
	IncludeSubaccounts bool `url:"include_subaccounts,omitempty"`
}

type TransactionType string

const (
	TransactionMerchantPayment       TransactionType = "merchant_payment"
	TransactionMerchantPaymentRefund TransactionType = "merchant_payment_refund"
	TransactionAPICheckout           TransactionType = "api_checkout"
	TransactionAPICheckoutRefund     TransactionType = "api_checkout_refund"
	TransactionAPIPayout             TransactionType = "api_payout"
	TransactionAPIPayoutReversal     TransactionType = "api_payout_reversal"
	TransactionBulkPayment           TransactionType = "bulk_payment"
	TransactionBulkPaymentReversal   TransactionType = "bulk_payment_reversal"
	TransactionB2BPayment            TransactionType = "b2b_payment"
	TransactionB2BPaymentReversal    TransactionType = "b2b_payment_reversal"
	TransactionMerchantSweep         TransactionType = "merchant_sweep"
)

type TransactionListParams struct {
	// Date is YYYY-MM-DD; the API defaults to the current day.
	Date               string `url:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	After              string `url:"after,omitempty"`
	IncludeSubaccounts bool   `url:"include_subaccounts,omitempty"`
}

type Transaction struct {
	Timestamp              time.Time         `json:"timestamp"`
	TransactionID          string            `json:"transaction_id"`
	TransactionType        TransactionType   `json:"transaction_type,omitempty"`
	Amount                 string            `json:"amount"`
	Fee                    string            `json:"fee"`
	Balance                string            `json:"balance,omitempty"`
	Currency               Currency          `json:"currency"`
	IsReversal             bool              `json:"is_reversal,omitempty"`
	CounterpartyName       string            `json:"counterparty_name,omitempty"`
	CounterpartyMobile     string            `json:"counterparty_mobile,omitempty"`
	CounterpartyID         string            `json:"counterparty_id,omitempty"`
	BusinessUserName       string            `json:"business_user_name,omitempty"`
	BusinessUserMobile     string            `json:"business_user_mobile,omitempty"`
	EmployeeID             string            `json:"employee_id,omitempty"`
	ClientReference        string            `json:"client_reference,omitempty"`
	PaymentReason          string            `json:"payment_reason,omitempty"`
	CheckoutAPISessionID   string            `json:"checkout_api_session_id,omitempty"`
	BatchID                string            `json:"batch_id,omitempty"`
	AggregatedMerchantID   string            `json:"aggregated_merchant_id,omitempty"`
	AggregatedMerchantName string            `json:"aggregated_merchant_name,omitempty"`
	CustomFields           map[string]string `json:"custom_fields,omitempty"`
	SubmerchantID          string            `json:"submerchant_id,omitempty"`
	SubmerchantName        string            `json:"submerchant_name,omitempty"`
}

type TransactionList struct {
	PageInfo PageInfo      `json:"page_info"`
	Date     string        `json:"date"`
	Items    []Transaction `json:"items"`
}

// Checkout

type CheckoutStatus string

const (
	CheckoutOpen     CheckoutStatus = "open"
	CheckoutComplete CheckoutStatus = "complete"
	CheckoutExpired  CheckoutStatus = "expired"
)

type PaymentStatus string

const (
	PaymentProcessing PaymentStatus = "processing"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentSucceeded  PaymentStatus = "succeeded"
)

// CreateCheckoutSessionRequest creates a hosted payment page. Amount is
// normalised with FormatAmount before it is sent.
type CreateCheckoutSessionRequest struct {
	Amount               string   `json:"amount" validate:"required"`
	Currency             Currency `json:"currency" validate:"required,len=3,uppercase"`
	SuccessURL           string   `json:"success_url" validate:"required,url"`
	ErrorURL             string   `json:"error_url" validate:"required,url"`
	ClientReference      string   `json:"client_reference,omitempty" validate:"omitempty,max=255"`
	RestrictPayerMobile  string   `json:"restrict_payer_mobile,omitempty" validate:"omitempty,e164"`
	AggregatedMerchantID string   `json:"aggregated_merchant_id,omitempty"`
}

type LastPaymentError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CheckoutSession struct {
	ID                   string            `json:"id"`
	Amount               string            `json:"amount"`
	Currency             Currency          `json:"currency"`
	BusinessName         string            `json:"business_name,omitempty"`
	CheckoutStatus       CheckoutStatus    `json:"checkout_status"`
	PaymentStatus        PaymentStatus     `json:"payment_status"`
	ClientReference      string            `json:"client_reference,omitempty"`
	SuccessURL           string            `json:"success_url"`
	ErrorURL             string            `json:"error_url"`
	WaveLaunchURL        string            `json:"wave_launch_url"`
	TransactionID        string            `json:"transaction_id,omitempty"`
	AggregatedMerchantID string            `json:"aggregated_merchant_id,omitempty"`
	LastPaymentError     *LastPaymentError `json:"last_payment_error,omitempty"`
	RestrictPayerMobile  string            `json:"restrict_payer_mobile,omitempty"`
	WhenCreated          time.Time         `json:"when_created"`
	WhenCompleted        *time.Time        `json:"when_completed,omitempty"`
	WhenExpires          time.Time         `json:"when_expires"`
	WhenRefunded         *time.Time        `json:"when_refunded,omitempty"`
}

type CheckoutSessionList struct {
	Result []CheckoutSession `json:"result"`
}

// Payout

type PayoutStatus string

const (
	PayoutProcessing PayoutStatus = "processing"
	PayoutSucceeded  PayoutStatus = "succeeded"
	PayoutFailed     PayoutStatus = "failed"
	PayoutReversed   PayoutStatus = "reversed"
)

type PayoutRequest struct {
	Currency             Currency `json:"currency" validate:"required,len=3,uppercase"`
	ReceiveAmount        string   `json:"receive_amount" validate:"required"`
	Mobile               string   `json:"mobile" validate:"required,e164"`
	Name                 string   `json:"name,omitempty" validate:"omitempty,max=255"`
	NationalID           string   `json:"national_id,omitempty"`
	ClientReference      string   `json:"client_reference,omitempty" validate:"omitempty,max=255"`
	PaymentReason        string   `json:"payment_reason,omitempty" validate:"omitempty,max=40"`
	AggregatedMerchantID string   `json:"aggregated_merchant_id,omitempty"`
}

type PayoutError struct {
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type Payout struct {
	ID                   string       `json:"id"`
	Currency             Currency     `json:"currency"`
	ReceiveAmount        string       `json:"receive_amount"`
	Fee                  string       `json:"fee"`
	Mobile               string       `json:"mobile"`
	Name                 string       `json:"name,omitempty"`
	NationalID           string       `json:"national_id,omitempty"`
	ClientReference      string       `json:"client_reference,omitempty"`
	PaymentReason        string       `json:"payment_reason,omitempty"`
	AggregatedMerchantID string       `json:"aggregated_merchant_id,omitempty"`
	Status               PayoutStatus `json:"status"`
	Timestamp            time.Time    `json:"timestamp"`
	PayoutError          *PayoutError `json:"payout_error,omitempty"`
}

type PayoutBatchRequest struct {
	Payouts []PayoutRequest `json:"payouts" validate:"required,min=1,dive"`
}

type PayoutBatchStatus string

const (
	PayoutBatchProcessing PayoutBatchStatus = "processing"
	PayoutBatchComplete   PayoutBatchStatus = "complete"
)

type PayoutBatch struct {
	ID      string            `json:"id"`
	Status  PayoutBatchStatus `json:"status,omitempty"`
	Results []Payout          `json:"results,omitempty"`
}

type PayoutList struct {
	Result []Payout `json:"result"`
}

// Aggregated merchants

type MerchantStatus string

const (
	MerchantActive   MerchantStatus = "active"
	MerchantInactive MerchantStatus = "inactive"
	MerchantPending  MerchantStatus = "pending"
)

type MerchantListParams struct {
	First  int            `url:"first,omitempty" validate:"omitempty,min=1,max=100"`
	After  string         `url:"after,omitempty"`
	Status MerchantStatus `url:"status,omitempty" validate:"omitempty,oneof=active inactive pending"`
	Search string         `url:"search,omitempty"`
}

type Merchant struct {
	ID                     string            `json:"id"`
	Name                   string            `json:"name"`
	Status                 MerchantStatus    `json:"status,omitempty"`
	BusinessType           string            `json:"business_type,omitempty"`
	BusinessRegistrationID string            `json:"business_registration_identifier,omitempty"`
	BusinessSector         string            `json:"business_sector,omitempty"`
	BusinessDescription    string            `json:"business_description,omitempty"`
	WebsiteURL             string            `json:"website_url,omitempty"`
	ManagerName            string            `json:"manager_name,omitempty"`
	Email                  string            `json:"email,omitempty"`
	Phone                  string            `json:"phone,omitempty"`
	PayoutFeeStructureName string            `json:"payout_fee_structure_name,omitempty"`
	CheckoutFeeStructure   string            `json:"checkout_fee_structure_name,omitempty"`
	IsLocked               bool              `json:"is_locked,omitempty"`
	Metadata               map[string]string `json:"metadata,omitempty"`
	WhenCreated            *time.Time        `json:"when_created,omitempty"`
	WhenUpdated            *time.Time        `json:"when_updated,omitempty"`
}

type MerchantList struct {
	PageInfo PageInfo   `json:"page_info"`
	Items    []Merchant `json:"items"`
}

// Webhook registrations

type WebhookStatus string

const (
	WebhookActive   WebhookStatus = "active"
	WebhookInactive WebhookStatus = "inactive"
)

type WebhookListParams struct {
	First  int               `url:"first,omitempty" validate:"omitempty,min=1"`
	After  string            `url:"after,omitempty"`
	Event  webhook.EventType `url:"event,omitempty"`
	Status WebhookStatus     `url:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

type CreateWebhookRequest struct {
	URL              string              `json:"url" validate:"required,url"`
	Events           []webhook.EventType `json:"events" validate:"required,min=1"`
	SecurityStrategy webhook.Strategy    `json:"security_strategy" validate:"required,oneof=SHARED_SECRET SIGNING_SECRET"`
	Description      string              `json:"description,omitempty"`
}

type UpdateWebhookRequest struct {
	URL         string              `json:"url,omitempty" validate:"omitempty,url"`
	Events      []webhook.EventType `json:"events,omitempty"`
	Description string              `json:"description,omitempty"`
	Status      WebhookStatus       `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

type Webhook struct {
	ID               string              `json:"id"`
	URL              string              `json:"url"`
	Events           []webhook.EventType `json:"events"`
	Status           WebhookStatus       `json:"status"`
	SecurityStrategy webhook.Strategy    `json:"security_strategy,omitempty"`
	Secret           string              `json:"secret,omitempty"`
	Description      string              `json:"description,omitempty"`
	CreatedAt        *time.Time          `json:"created_at,omitempty"`
	UpdatedAt        *time.Time          `json:"updated_at,omitempty"`
}

type WebhookList struct {
	PageInfo PageInfo  `json:"page_info"`
	Items    []Webhook `json:"items"`
}

type WebhookTestResult struct {
	Success bool `json:"success"`
}

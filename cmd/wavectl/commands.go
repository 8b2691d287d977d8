package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	wave "github.com/noah-isme/wave-go"
	"github.com/noah-isme/wave-go/webhook"
)

func balanceCmd(a *app) *cobra.Command {
	var params wave.BalanceParams
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the wallet balance",
		Args:  cobra.NoArgs,
		RunE: a.withClient(func(cmd *cobra.Command, _ []string, c *wave.Client) error {
			out, err := c.Balance.Get(cmd.Context(), &params)
			if err != nil {
				return err
			}
			return a.print(out)
		}),
	}
	cmd.Flags().BoolVar(&params.IncludeSubaccounts, "include-subaccounts", false, "include sub-account balances")
	return cmd
}

func transactionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "transactions", Short: "List and refund wallet transactions"}

	var params wave.TransactionListParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List transactions for one day",
		Args:  cobra.NoArgs,
		RunE: a.withClient(func(cmd *cobra.Command, _ []string, c *wave.Client) error {
			out, err := c.Balance.ListTransactions(cmd.Context(), &params)
			if err != nil {
				return err
			}
			return a.print(out)
		}),
	}
	list.Flags().StringVar(&params.Date, "date", "", "day to list, YYYY-MM-DD")
	list.Flags().StringVar(&params.After, "after", "", "pagination cursor")
	list.Flags().BoolVar(&params.IncludeSubaccounts, "include-subaccounts", false, "include sub-account transactions")

	refund := &cobra.Command{
		Use:   "refund <transaction-id>",
		Short: "Refund a merchant payment",
		Args:  cobra.ExactArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, args []string, c *wave.Client) error {
			if err := c.Balance.RefundTransaction(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.done()
		}),
	}

	cmd.AddCommand(list, refund)
	return cmd
}

func checkoutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "checkout", Short: "Manage checkout sessions"}

	var req wave.CreateCheckoutSessionRequest
	var currency string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a checkout session",
		Args:  cobra.NoArgs,
		RunE: a.withClient(func(cmd *cobra.Command, _ []string, c *wave.Client) error {
			req.Currency = wave.Currency(currency)
			out, err := c.Checkout.CreateSession(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(out)
		}),
	}
	create.Flags().StringVar(&req.Amount, "amount", "", "amount to collect")
	create.Flags().StringVar(&currency, "currency", string(wave.CurrencyXOF), "ISO 4217 currency")
	create.Flags().StringVar(&req.SuccessURL, "success-url", "", "redirect after payment")
	create.Flags().StringVar(&req.ErrorURL, "error-url", "", "redirect after failure")
	create.Flags().StringVar(&req.ClientReference, "client-reference", "", "merchant reference")
	create.Flags().StringVar(&req.RestrictPayerMobile, "restrict-payer-mobile", "", "only this E.164 number may pay")
	create.Flags().StringVar(&req.AggregatedMerchantID, "aggregated-merchant-id", "", "collect for an aggregated merchant")

	get := &cobra.Command{
		Use:   "get <session-id>",
		Short: "Retrieve a checkout session",
		Args:  cobra.ExactArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, args []string, c *wave.Client) error {
			out, err := c.Checkout.GetSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(out)
		}),
	}

	byTransaction := &cobra.Command{
		Use:   "by-transaction <transaction-id>",
		Short: "Retrieve the session that produced a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, args []string, c *wave.Client) error {
			out, err := c.Checkout.GetSessionByTransactionID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(out)
		}),
	}

	search := &cobra.Command{
		Use:   "search <client-reference>",
		Short: "Find sessions by client reference",
		Args:  cobra.ExactArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, args []string, c *wave.Client) error {
			out, err := c.Checkout.SearchSessions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(out)
		}),
	}

	refund := &cobra.Command{
		Use:   "refund <session-id>",
		Short: "Refund a completed session",
		Args:  cobra.ExactArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, args []string, c *wave.Client) error {
			if err := c.Checkout.RefundSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.done()
		}),
	}

	expire := &cobra.Command{
		Use:   "expire <session-id>",
		Short: "Expire an open session",
		Args:  cobra.ExactArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, args []string, c *wave.Client) error {
			if err := c.Checkout.ExpireSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.done()
		}),
	}

	cmd.AddCommand(create, get, byTransaction, search, refund, expire)
	return cmd
}

func payoutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "payout", Short: "Send and inspect payouts"}

	var req wave.PayoutRequest
	var currency, idempotencyKey string
	create := &cobra.Command{
		Use:   "create",
		Short: "Send a single payout",
		Args:  cobra.NoArgs,
		RunE: a.withClient(func(cmd *cobra.Command, _ []string, c *wave.Client) error {
			req.Currency = wave.Currency(currency)
			out, err := c.Payout.Create(cmd.Context(), req, idempotencyKey)
			if err != nil {
				return err
			}
			return a.print(out)
		}),
	}
	create.Flags().StringVar(&currency, "currency", string(wave.CurrencyXOF), "ISO 4217 currency")
	create.Flags().StringVar(&req.ReceiveAmount, "amount", "", "amount the recipient receives")
	create.Flags().StringVar(&req.Mobile, "mobile", "", "recipient E.164 number")
	create.Flags().StringVar(&req.Name, "name", "", "recipient name")
	create.Flags().StringVar(&req.NationalID, "national-id", "", "recipient national id")
	create.Flags().StringVar(&req.ClientReference, "client-reference", "", "merchant reference")
	create.Flags().StringVar(&req.PaymentReason, "reason", "", "reason shown to the recipient")
	create.Flags().StringVar(&req.AggregatedMerchantID, "aggregated-merchant-id", "", "pay out for an aggregated merchant")
	create.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "reuse to retry safely; random when empty")

	var file string
	batch := &cobra.Command{
		Use:   "batch",
		Short: "Submit a payout batch read from a JSON file",
		Args:  cobra.NoArgs,
		RunE: a.withClient(func(cmd *cobra.Command, _ []string, c *wave.Client) error {
			var req wave.PayoutBatchRequest
			if err := a.readJSON(file, &req); err != nil {
				return err
			}
			out, err := c.Payout.CreateBatch(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(out)
		}),
	}
	batch.Flags().StringVarP(&file, "file", "f", "-", `batch document {"payouts":[...]}, "-" for stdin`)

	get := &cobra.Command{
		Use:   "get <payout-id>",
		Short: "Retrieve a payout",
		Args:  cobra.ExactArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, args []string, c *wave.Client) error {
			out, err := c.Payout.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(out)
		}),
	}

	getBatch := &cobra.Command{
		Use:   "get-batch <batch-id>",
		Short: "Retrieve a payout batch and its results",
		Args:  cobra.ExactArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, args []string, c *wave.Client) error {
			out, err := c.Payout.GetBatch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(out)
		}),
	}

	search := &cobra.Command{
		Use:   "search <client-reference>",
		Short: "Find payouts by client reference",
		Args:  cobra.ExactArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, args []string, c *wave.Client) error {
			out, err := c.Payout.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(out)
		}),
	}

	reverse := &cobra.Command{
		Use:   "reverse <payout-id>",
		Short: "Reverse a payout",
		Args:  cobra.ExactArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, args []string, c *wave.Client) error {
			if err := c.Payout.Reverse(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.done()
		}),
	}

	cmd.AddCommand(create, batch, get, getBatch, search, reverse)
	return cmd
}

func merchantsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "merchants", Short: "Inspect aggregated merchants"}

	var params wave.MerchantListParams
	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List aggregated merchants",
		Args:  cobra.NoArgs,
		RunE: a.withClient(func(cmd *cobra.Command, _ []string, c *wave.Client) error {
			params.Status = wave.MerchantStatus(status)
			out, err := c.Merchants.List(cmd.Context(), &params)
			if err != nil {
				return err
			}
			return a.print(out)
		}),
	}
	list.Flags().IntVar(&params.First, "first", 0, "page size")
	list.Flags().StringVar(&params.After, "after", "", "pagination cursor")
	list.Flags().StringVar(&status, "status", "", "active, inactive or pending")
	list.Flags().StringVar(&params.Search, "search", "", "name filter")

	get := &cobra.Command{
		Use:   "get <merchant-id>",
		Short: "Retrieve an aggregated merchant",
		Args:  cobra.ExactArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, args []string, c *wave.Client) error {
			out, err := c.Merchants.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(out)
		}),
	}

	cmd.AddCommand(list, get)
	return cmd
}

func webhooksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "webhooks", Short: "Manage webhook subscriptions (deprecated API)"}

	var params wave.WebhookListParams
	var listStatus, listEvent string
	list := &cobra.Command{
		Use:   "list",
		Short: "List webhooks",
		Args:  cobra.NoArgs,
		RunE: a.withClient(func(cmd *cobra.Command, _ []string, c *wave.Client) error {
			params.Status = wave.WebhookStatus(listStatus)
			params.Event = webhook.EventType(listEvent)
			out, err := c.Webhooks.List(cmd.Context(), &params)
			if err != nil {
				return err
			}
			return a.print(out)
		}),
	}
	list.Flags().IntVar(&params.First, "first", 0, "page size")
	list.Flags().StringVar(&params.After, "after", "", "pagination cursor")
	list.Flags().StringVar(&listStatus, "status", "", "active or inactive")
	list.Flags().StringVar(&listEvent, "event", "", "event type filter")

	var create wave.CreateWebhookRequest
	var createEvents []string
	var strategy string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Subscribe a URL to events",
		Args:  cobra.NoArgs,
		RunE: a.withClient(func(cmd *cobra.Command, _ []string, c *wave.Client) error {
			create.Events = eventTypes(createEvents)
			create.SecurityStrategy = webhook.Strategy(strategy)
			out, err := c.Webhooks.Create(cmd.Context(), create)
			if err != nil {
				return err
			}
			return a.print(out)
		}),
	}
	createCmd.Flags().StringVar(&create.URL, "url", "", "delivery URL")
	createCmd.Flags().StringSliceVar(&createEvents, "event", nil, "event type, repeatable")
	createCmd.Flags().StringVar(&strategy, "strategy", string(webhook.StrategySigningSecret), "SHARED_SECRET or SIGNING_SECRET")
	createCmd.Flags().StringVar(&create.Description, "description", "", "free text")

	get := &cobra.Command{
		Use:   "get <webhook-id>",
		Short: "Retrieve a webhook",
		Args:  cobra.ExactArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, args []string, c *wave.Client) error {
			out, err := c.Webhooks.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(out)
		}),
	}

	var update wave.UpdateWebhookRequest
	var updateEvents []string
	var updateStatus string
	updateCmd := &cobra.Command{
		Use:   "update <webhook-id>",
		Short: "Change a webhook",
		Args:  cobra.ExactArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, args []string, c *wave.Client) error {
			update.Events = eventTypes(updateEvents)
			update.Status = wave.WebhookStatus(updateStatus)
			out, err := c.Webhooks.Update(cmd.Context(), args[0], update)
			if err != nil {
				return err
			}
			return a.print(out)
		}),
	}
	updateCmd.Flags().StringVar(&update.URL, "url", "", "delivery URL")
	updateCmd.Flags().StringSliceVar(&updateEvents, "event", nil, "event type, repeatable")
	updateCmd.Flags().StringVar(&update.Description, "description", "", "free text")
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "active or inactive")

	del := &cobra.Command{
		Use:   "delete <webhook-id>",
		Short: "Delete a webhook",
		Args:  cobra.ExactArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, args []string, c *wave.Client) error {
			if err := c.Webhooks.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.done()
		}),
	}

	test := &cobra.Command{
		Use:   "test <webhook-id>",
		Short: "Ask Wave to send a test event",
		Args:  cobra.ExactArgs(1),
		RunE: a.withClient(func(cmd *cobra.Command, args []string, c *wave.Client) error {
			out, err := c.Webhooks.Test(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(out)
		}),
	}

	cmd.AddCommand(list, createCmd, get, updateCmd, del, test)
	return cmd
}

// verifyCmd checks a captured delivery offline; it needs no API key.
func verifyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "verify", Short: "Verify a captured webhook delivery"}

	var sharedHeader, sharedSecret string
	shared := &cobra.Command{
		Use:   "shared",
		Short: "Check an Authorization header against the shared secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ok, err := webhook.VerifySharedSecret(sharedHeader, sharedSecret)
			if err != nil {
				return err
			}
			return a.verdict(ok)
		},
	}
	shared.Flags().StringVar(&sharedHeader, "header", "", "Authorization header value")
	shared.Flags().StringVar(&sharedSecret, "secret", os.Getenv("WAVE_WEBHOOK_SECRET"), "shared secret")

	var sigHeader, sigSecret, file string
	signature := &cobra.Command{
		Use:   "signature",
		Short: "Check a Wave-Signature header against the signing secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := a.readAll(file)
			if err != nil {
				return err
			}
			ok, err := webhook.VerifySignatureSecret(payload, sigHeader, sigSecret)
			if err != nil {
				return err
			}
			return a.verdict(ok)
		},
	}
	signature.Flags().StringVar(&sigHeader, "header", "", "Wave-Signature header value")
	signature.Flags().StringVar(&sigSecret, "secret", os.Getenv("WAVE_WEBHOOK_SECRET"), "signing secret")
	signature.Flags().StringVarP(&file, "file", "f", "-", `raw request body, "-" for stdin`)

	cmd.AddCommand(shared, signature)
	return cmd
}

func (a *app) verdict(ok bool) error {
	if !ok {
		return errors.New("signature does not match")
	}
	_, err := fmt.Fprintln(a.out, "valid")
	return err
}

func (a *app) readAll(file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(a.in)
	}
	return os.ReadFile(file)
}

func (a *app) readJSON(file string, v any) error {
	raw, err := a.readAll(file)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", file, err)
	}
	return nil
}

func eventTypes(values []string) []webhook.EventType {
	if len(values) == 0 {
		return nil
	}
	out := make([]webhook.EventType, len(values))
	for i, v := range values {
		out[i] = webhook.EventType(v)
	}
	return out
}

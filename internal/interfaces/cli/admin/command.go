// Package admin exposes operator actions on the ledger: grants, extensions,
// refunds, settled payments and family sync.
package admin

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	nodeUsecases "github.com/orris-inc/passage/internal/application/node/usecases"
	paymentUsecases "github.com/orris-inc/passage/internal/application/payment/usecases"
	subUsecases "github.com/orris-inc/passage/internal/application/subscription/usecases"
	"github.com/orris-inc/passage/internal/interfaces/cli/bootstrap"
)

var (
	env        string
	configPath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Operator actions on the subscription ledger",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(
		newGrantCommand(),
		newExtendCommand(),
		newRefundCommand(),
		newCreditCommand(),
		newFamilySyncCommand(),
		newLinksCommand(),
		newDevicesCommand(),
	)

	return cmd
}

// withRuntime runs fn against a freshly initialised runtime. Family sync runs
// inline because no bus subscriber is guaranteed to be listening.
func withRuntime(fn func(cmd *cobra.Command, rt *bootstrap.Runtime) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap.Init(bootstrap.Options{
			Env:              env,
			ConfigPath:       configPath,
			InlineFamilySync: true,
		})
		if err != nil {
			return err
		}
		defer rt.Close()
		return fn(cmd, rt)
	}
}

func newGrantCommand() *cobra.Command {
	var (
		userID, planID, nodeID uint
		days                   int
		note                   string
	)

	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Grant an active subscription without charging",
		RunE: withRuntime(func(cmd *cobra.Command, rt *bootstrap.Runtime) error {
			grant := subUsecases.AdminGrantCommand{UserID: userID, PlanID: planID, Days: days, Note: note}
			if cmd.Flags().Changed("node") {
				grant.NodeID = &nodeID
			}
			sub, err := rt.Container.UseCases.AdminGrant.Execute(cmd.Context(), grant)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "granted subscription %d, expires %s\n",
				sub.ID(), sub.ExpiresAt().Format("2006-01-02 15:04 MST"))
			return nil
		}),
	}

	cmd.Flags().UintVar(&userID, "user", 0, "User ID (required)")
	cmd.Flags().UintVar(&planID, "plan", 0, "Plan ID (required)")
	cmd.Flags().IntVar(&days, "days", 30, "Days of validity, 0 for non-expiring")
	cmd.Flags().UintVar(&nodeID, "node", 0, "Node ID (default: placement policy)")
	cmd.Flags().StringVar(&note, "note", "", "Free-text note")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("plan")

	return cmd
}

func newExtendCommand() *cobra.Command {
	var (
		subscriptionID uint
		days           int
	)

	cmd := &cobra.Command{
		Use:   "extend",
		Short: "Extend a subscription without charging",
		RunE: withRuntime(func(cmd *cobra.Command, rt *bootstrap.Runtime) error {
			sub, err := rt.Container.UseCases.AdminExtend.Execute(cmd.Context(), subUsecases.AdminExtendCommand{
				SubscriptionID: subscriptionID,
				Days:           days,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "subscription %d now expires %s\n",
				sub.ID(), sub.ExpiresAt().Format("2006-01-02 15:04 MST"))
			return nil
		}),
	}

	cmd.Flags().UintVar(&subscriptionID, "subscription", 0, "Subscription ID (required)")
	cmd.Flags().IntVar(&days, "days", 0, "Days to add (required)")
	_ = cmd.MarkFlagRequired("subscription")
	_ = cmd.MarkFlagRequired("days")

	return cmd
}

func newRefundCommand() *cobra.Command {
	var (
		userID uint
		amount int64
		reason string
	)

	cmd := &cobra.Command{
		Use:   "refund",
		Short: "Credit a user's balance",
		RunE: withRuntime(func(cmd *cobra.Command, rt *bootstrap.Runtime) error {
			if err := rt.Container.UseCases.AdminRefund.Execute(cmd.Context(), subUsecases.AdminRefundCommand{
				UserID: userID,
				Amount: amount,
				Reason: reason,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "refunded %d to user %d\n", amount, userID)
			return nil
		}),
	}

	cmd.Flags().UintVar(&userID, "user", 0, "User ID (required)")
	cmd.Flags().Int64Var(&amount, "amount", 0, "Amount in cents (required)")
	cmd.Flags().StringVar(&reason, "reason", "", "Reason recorded in the log")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newCreditCommand() *cobra.Command {
	var (
		userID    uint
		amount    int64
		method    string
		reference string
	)

	cmd := &cobra.Command{
		Use:   "credit",
		Short: "Record a settled payment and credit the balance",
		Long:  `Record a settled payment. Repeating a reference is a no-op, so the command is safe to retry.`,
		RunE: withRuntime(func(cmd *cobra.Command, rt *bootstrap.Runtime) error {
			result, err := rt.Container.UseCases.CreditPayment.Execute(cmd.Context(), paymentUsecases.CreditPaymentCommand{
				UserID:            userID,
				Amount:            amount,
				Method:            method,
				ExternalReference: reference,
			})
			if err != nil {
				return err
			}
			if result.Duplicate {
				fmt.Fprintf(cmd.OutOrStdout(), "payment %s already credited\n", reference)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "payment %d credited %d to user %d\n", result.PaymentID, amount, userID)
			return nil
		}),
	}

	cmd.Flags().UintVar(&userID, "user", 0, "User ID (required)")
	cmd.Flags().Int64Var(&amount, "amount", 0, "Amount in cents (required)")
	cmd.Flags().StringVar(&method, "method", "manual", "Payment method")
	cmd.Flags().StringVar(&reference, "reference", "", "External payment reference (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("reference")

	return cmd
}

func newFamilySyncCommand() *cobra.Command {
	var parentID uint

	cmd := &cobra.Command{
		Use:   "family-sync",
		Short: "Mirror a parent's subscription onto every family member",
		RunE: withRuntime(func(cmd *cobra.Command, rt *bootstrap.Runtime) error {
			result, err := rt.Container.UseCases.SyncFamily.Execute(cmd.Context(), parentID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d, updated %d, expired %d\n",
				result.Created, result.Updated, result.Expired)
			return nil
		}),
	}

	cmd.Flags().UintVar(&parentID, "user", 0, "Parent user ID (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newLinksCommand() *cobra.Command {
	var subscriptionID uint

	cmd := &cobra.Command{
		Use:   "links",
		Short: "Print a subscription's share links and profile URL",
		RunE: withRuntime(func(cmd *cobra.Command, rt *bootstrap.Runtime) error {
			ctx := cmd.Context()
			sub, err := rt.Container.Repos.Subscriptions.GetByID(ctx, subscriptionID)
			if err != nil {
				return err
			}
			links, err := rt.Container.UseCases.SubscriptionLinks.Execute(ctx, nodeUsecases.GetSubscriptionLinksQuery{
				SubscriptionID: subscriptionID,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if base := strings.TrimRight(rt.Config.Server.BaseURL, "/"); base != "" {
				fmt.Fprintf(out, "profile: %s/sub/%s\n", base, sub.Credential().AccessToken())
			}
			for _, link := range links {
				fmt.Fprintln(out, link)
			}
			return nil
		}),
	}

	cmd.Flags().UintVar(&subscriptionID, "subscription", 0, "Subscription ID (required)")
	_ = cmd.MarkFlagRequired("subscription")

	return cmd
}

func newDevicesCommand() *cobra.Command {
	var subscriptionID uint

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List the addresses that fetched a subscription recently",
		RunE: withRuntime(func(cmd *cobra.Command, rt *bootstrap.Runtime) error {
			ctx := cmd.Context()
			query := rt.Container.UseCases.DeviceQuery

			records, err := query.ActiveDeviceIPs(ctx, subscriptionID)
			if err != nil {
				return err
			}
			limit, err := query.DeviceLimit(ctx, subscriptionID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", formatDeviceSummary(len(records), limit))
			for _, r := range records {
				fmt.Fprintf(out, "%s\t%s\t%s\n", r.ClientIP(), r.LastSeenAt().Format("2006-01-02 15:04:05"), r.UserAgent())
			}
			return nil
		}),
	}

	cmd.Flags().UintVar(&subscriptionID, "subscription", 0, "Subscription ID (required)")
	_ = cmd.MarkFlagRequired("subscription")

	return cmd
}

func formatDeviceSummary(active, limit int) string {
	switch {
	case limit <= 0:
		return fmt.Sprintf("%d active devices (unlimited)", active)
	case active > limit:
		return fmt.Sprintf("%d/%d active devices (over limit)", active, limit)
	default:
		return fmt.Sprintf("%d/%d active devices", active, limit)
	}
}

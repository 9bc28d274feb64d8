package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/zyra-incident-service/internal/domain"
)

func newRootCmd() *cobra.Command {
	var a *app

	root := &cobra.Command{
		Use:   "zyra",
		Short: "Agricultural incident enrichment and recommendation service",
		Long: `zyra records farmer incident reports, scores their severity, attaches
remediation advice, and raises resource requests for high severity incidents.

Incidents are written to the ledger canister through dfx. When the ledger is
unreachable they are queued in a local JSON store instead.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logOut := cmd.ErrOrStderr()
			if cmd.Name() == "serve" {
				logOut = os.Stdout
			}
			var err error
			a, err = newApp(logOut)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a != nil {
				a.Close()
			}
		},
	}

	get := func() *app { return a }
	root.AddCommand(
		newServeCmd(get),
		newReportCmd(get),
		newQueryLgaCmd(get),
		newGetCmd(get),
		newListCmd(get),
		newRecommendCmd(get),
		newStatusCmd(get),
		newResourceCmd(get),
		newSeedCmd(get),
		newStatsCmd(get),
		newPingCmd(get),
	)
	return root
}

func newReportCmd(app func() *app) *cobra.Command {
	var raw domain.RawReport
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Submit a farmer incident report",
		Example: `  zyra report --farmer F-1001 --lga Ikeja --state Lagos --lat 6.6 --lon 3.35 \
    --crop maize --category pest --description "armyworm on young plants"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sub, err := app().svc.Report(cmd.Context(), raw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sub.Acknowledgement)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&raw.FarmerID, "farmer", "", "farmer id")
	f.StringVar(&raw.LGA, "lga", "", "local government area")
	f.StringVar(&raw.State, "state", "", "state")
	f.Float64Var(&raw.Lat, "lat", 0, "latitude")
	f.Float64Var(&raw.Lon, "lon", 0, "longitude")
	f.StringVar(&raw.Crop, "crop", "", "crop: maize, rice, cassava, tomato, sorghum, other")
	f.StringVar(&raw.Category, "category", "", "category: pest, disease, flood, drought, input_need, other")
	f.StringVar(&raw.Description, "description", "", "free-text description")
	for _, name := range []string{"farmer", "lga", "crop", "category"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newQueryLgaCmd(app func() *app) *cobra.Command {
	var ignoreCase, asJSON bool
	cmd := &cobra.Command{
		Use:   "query-lga <lga>",
		Short: "Summarize the incidents reported in an LGA",
		Long: `Summarizes incidents in one Local Government Area: totals, category
breakdown, and the three most severe incidents.

Matching is exact by default. --ignore-case matches the area name
case-insensitively across every incident.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := app().svc.QueryByLga(cmd.Context(), args[0], ignoreCase)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), sum)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, sum.Message)
			for _, line := range sum.TopHighSeverity {
				fmt.Fprintln(out, "  "+line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&ignoreCase, "ignore-case", false, "match the LGA name case-insensitively")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full summary as JSON")
	return cmd
}

func newGetCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <incident-id>",
		Short: "Show one incident",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inc, err := app().svc.GetDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), inc)
		},
	}
}

func newListCmd(app func() *app) *cobra.Command {
	var (
		status string
		high   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List incidents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := app().svc
			var (
				incs []domain.Incident
				err  error
			)
			switch {
			case status != "":
				incs, err = svc.ListByStatus(cmd.Context(), status)
			case high:
				incs, err = svc.ListHighSeverity(cmd.Context())
			default:
				incs, err = svc.ListAll(cmd.Context())
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, inc := range incs {
				fmt.Fprintln(out, inc.Summary())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only incidents in this status")
	cmd.Flags().BoolVar(&high, "high-severity", false, "only incidents scored 70 or above, most severe first")
	cmd.MarkFlagsMutuallyExclusive("status", "high-severity")
	return cmd
}

func newRecommendCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <incident-id> <step>",
		Short: "Attach a recommendation to an incident",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inc, err := app().svc.AddRecommendation(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recommendation added to %s (status: %s)\n", inc.IncidentID, inc.Status)
			return nil
		},
	}
}

func newStatusCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <incident-id> <received|recommended|dispatched|closed>",
		Short: "Move an incident forward through its lifecycle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inc, err := app().svc.UpdateStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", inc.IncidentID, inc.Status)
			return nil
		},
	}
}

func newResourceCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "request-resource <incident-id> <agrochemical|seed|training|irrigation>",
		Short: "Raise a resource request on an incident",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inc, err := app().svc.RaiseResourceRequest(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resource request raised for %s: %s\n", inc.IncidentID, inc.ResourceRequest.Notes)
			return nil
		},
	}
}

func newSeedCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [path]",
		Short: "Submit every report in a JSON or YAML seed file",
		Long:  "Submits every report in the seed file. Defaults to SEED_PATH.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			path := a.cfg.SeedPath
			if len(args) == 1 {
				path = args[0]
			}
			res, err := a.svc.Seed(cmd.Context(), path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, sub := range res.Submitted {
				where := "ledger"
				if !sub.LedgerWritten {
					where = "local"
				}
				fmt.Fprintf(out, "%s (%s)\n", sub.Incident.Summary(), where)
			}
			fmt.Fprintf(out, "Seeded %d incidents, %d rejected\n", len(res.Submitted), res.Failed)
			return nil
		},
	}
}

func newStatsCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show incident totals by status, category, and LGA",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := app().svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}
}

func newPingCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the ledger network answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := app().Ping(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ledger reachable, %d incidents stored\n", n)
			return nil
		},
	}
}

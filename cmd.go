package main

import (
	"github.com/spf13/cobra"

	"shiftbook/internal/attendance"
)

func SetupCommands(a *App) *cobra.Command {
	var configPath string

	// root command
	rootCmd := &cobra.Command{
		Use:           "shiftbook",
		Short:         "Track warehouse shift attendance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.Opened() {
				return nil
			}
			return a.Open(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default $SHIFTBOOK_CONFIG or ~/.config/shiftbook/config.yaml)")

	workerNames := func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if !a.Opened() {
			if err := a.Open(cmd.Context(), configPath); err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
		}
		var names []string
		for _, w := range a.store.Workers() {
			names = append(names, w.Name)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}

	// worker management
	workerCmd := &cobra.Command{
		Use:   "worker",
		Short: "Manage workers",
	}

	var position, phone string
	workerAddCmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.AddWorker(cmd.Context(), args[0], position, phone)
		},
	}
	workerAddCmd.Flags().StringVarP(&position, "position", "p", "", "job position (required)")
	workerAddCmd.Flags().StringVar(&phone, "phone", "", "phone number")
	workerAddCmd.MarkFlagRequired("position")

	workerListCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List workers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ListWorkers()
		},
	}

	workerDeleteCmd := &cobra.Command{
		Use:               "delete [id or name]",
		Aliases:           []string{"rm"},
		Short:             "Delete a worker and all of their records",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: workerNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			var ref string
			if len(args) > 0 {
				ref = args[0]
			}
			return a.DeleteWorker(cmd.Context(), ref)
		},
	}
	workerCmd.AddCommand(workerAddCmd, workerListCmd, workerDeleteCmd)

	// command for marking attendance of one worker in one shift
	var mark MarkOptions
	var lunch int
	var notes string
	markCmd := &cobra.Command{
		Use:               "mark [id or name]",
		Short:             "Mark attendance for a worker",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: workerNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := mark
			if len(args) > 0 {
				opts.Worker = args[0]
			}
			if cmd.Flags().Changed("lunch") {
				opts.Lunch = &lunch
			}
			if cmd.Flags().Changed("notes") {
				opts.Notes = &notes
			}
			return a.Mark(cmd.Context(), opts)
		},
	}
	markCmd.Flags().StringVarP(&mark.Date, "date", "d", "", "date as YYYY-MM-DD (default today)")
	markCmd.Flags().StringVarP(&mark.Shift, "shift", "s", "", "shift name")
	markCmd.Flags().StringVar(&mark.Status, "status", "", "present, absent, late, sick-leave or vacation")
	markCmd.Flags().StringVar(&mark.Arrival, "arrival", "", "arrival time HH:MM (default now for present/late)")
	markCmd.Flags().StringVar(&mark.Departure, "departure", "", "departure time HH:MM")
	markCmd.Flags().IntVar(&lunch, "lunch", attendance.DefaultLunchBreak, "lunch break in minutes (0 means the default)")
	markCmd.Flags().StringVar(&notes, "notes", "", "free-text notes")
	markCmd.RegisterFlagCompletionFunc("shift", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var names []string
		for _, s := range attendance.DefaultCatalog().Shifts() {
			names = append(names, s.Name)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	markCmd.RegisterFlagCompletionFunc("status", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var names []string
		for _, s := range attendance.Statuses() {
			names = append(names, string(s))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	dayCmd := &cobra.Command{
		Use:   "day [date]",
		Short: "Show attendance for a date (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var date string
			if len(args) > 0 {
				date = args[0]
			}
			return a.Day(date)
		},
	}

	statsCmd := &cobra.Command{
		Use:               "stats [id or name]",
		Short:             "Show attendance statistics",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: workerNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			var ref string
			if len(args) > 0 {
				ref = args[0]
			}
			return a.Stats(ref)
		},
	}

	shiftsCmd := &cobra.Command{
		Use:   "shifts",
		Short: "List the shift schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Shifts()
		},
	}

	// command for exporting a timesheet workbook
	var rep ReportOptions
	var period string
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Export an xlsx timesheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := rep
			opts.Period = Period(period)
			return a.Report(opts)
		},
	}
	reportCmd.Flags().StringVar(&period, "period", string(PeriodMonth), "day, week, month or year")
	reportCmd.Flags().StringVar(&rep.From, "from", "", "first date YYYY-MM-DD")
	reportCmd.Flags().StringVar(&rep.To, "to", "", "last date YYYY-MM-DD")
	reportCmd.Flags().StringVarP(&rep.Output, "output", "o", "", "output file (default timesheet_<range>.xlsx)")

	// sync & backup
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Move data between devices",
	}

	syncCodeCmd := &cobra.Command{
		Use:   "code",
		Short: "Print a sync code for the whole dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.SyncCode()
		},
	}

	syncImportCodeCmd := &cobra.Command{
		Use:   "import-code [code]",
		Short: "Replace all data with a sync code (read from stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var code string
			if len(args) > 0 {
				code = args[0]
			}
			return a.ImportCode(cmd.Context(), code)
		},
	}

	var exportPath string
	syncExportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Export(cmd.Context(), exportPath)
		},
	}
	syncExportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "output file (default atlant_backup_<date>.json)")

	syncImportCmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace all data with a JSON backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Import(cmd.Context(), args[0])
		},
	}

	syncStatusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show stored data and last sync time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.SyncStatus(cmd.Context())
		},
	}

	var yes bool
	syncClearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all workers and records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Clear(cmd.Context(), yes)
		},
	}
	syncClearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")

	syncCmd.AddCommand(syncCodeCmd, syncImportCodeCmd, syncExportCmd, syncImportCmd, syncStatusCmd, syncClearCmd)

	// add commands
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(markCmd)
	rootCmd.AddCommand(dayCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(shiftsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(syncCmd)

	return rootCmd
}

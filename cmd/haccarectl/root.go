package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/haclabs/haccare/internal/auth"
	"github.com/haclabs/haccare/internal/common"
	"github.com/haclabs/haccare/internal/export"
	"github.com/haclabs/haccare/internal/index"
	"github.com/haclabs/haccare/internal/label"
	"github.com/haclabs/haccare/internal/logging"
	"github.com/haclabs/haccare/internal/services"
	"github.com/haclabs/haccare/internal/web"
	"github.com/haclabs/haccare/internal/web/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Seams for tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

type rootOptions struct {
	usersFile  string
	recordsDir string
	storage    string
	dsn        string
	baseDir    string
	indexFile  string
	verbose    bool

	in  io.Reader
	log logging.Logger
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var defaults config.Config
	defaults.LoadDefaults()

	o := &rootOptions{in: in, log: logging.Nop()}

	root := &cobra.Command{
		Use:          "haccarectl",
		Short:        "hacCare maintenance commands",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if o.verbose {
				level = slog.LevelDebug
			}
			o.log = logging.NewTextLogger(cmd.ErrOrStderr(), level)
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&o.usersFile, "users", defaults.UsersFile, "credential file")
	pf.StringVar(&o.recordsDir, "records", defaults.RecordsDir, "JSON records directory")
	pf.StringVar(&o.storage, "storage", defaults.Storage, "record storage: json or sqlite")
	pf.StringVar(&o.dsn, "dsn", defaults.DatabaseDSN, "SQLite database path")
	pf.StringVar(&o.baseDir, "base", ".", "scanner base directory")
	pf.StringVar(&o.indexFile, "index", index.DefaultFile, "scanner index workbook")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(usersCmd(o), recordsCmd(o), indexCmd(o), labelCmd(), secretCmd())
	return root
}

func usersCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage web front-end accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List usernames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := auth.LoadCredentials(cmd.Context(), o.usersFile, o.log)
			if err != nil {
				return err
			}
			for _, u := range creds.Usernames() {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}
			return nil
		},
	})

	var fromStdin bool
	passwd := &cobra.Command{
		Use:   "passwd <username>",
		Short: "Create a user or change a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := auth.LoadCredentials(cmd.Context(), o.usersFile, o.log)
			if err != nil {
				return err
			}
			pw, err := promptPassword(cmd, o.in, fromStdin)
			if err != nil {
				return err
			}
			if err := creds.SetPassword(cmd.Context(), args[0], pw); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password set for %s\n", strings.ToLower(strings.TrimSpace(args[0])))
			return nil
		},
	}
	passwd.Flags().BoolVar(&fromStdin, "password-stdin", false, "read the password from the first line of stdin")
	cmd.AddCommand(passwd)

	return cmd
}

// promptPassword reads twice from the terminal, or once from in when it is
// not a terminal or --password-stdin is set.
func promptPassword(cmd *cobra.Command, in io.Reader, fromStdin bool) (string, error) {
	f, isFile := in.(*os.File)
	if fromStdin || !isFile || !isTerminal(int(f.Fd())) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	w := cmd.ErrOrStderr()
	fmt.Fprint(w, "New password: ")
	first, err := readPassword(int(f.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	fmt.Fprint(w, "Repeat password: ")
	second, err := readPassword(int(f.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(first)
	defer common.WipeByteArray(second)
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

// withPatients opens the configured record store for the duration of fn.
func (o *rootOptions) withPatients(ctx context.Context, fn func(services.PatientService) error) error {
	store, err := web.OpenStore(ctx, &config.Config{
		Storage:     o.storage,
		RecordsDir:  o.recordsDir,
		DatabaseDSN: o.dsn,
	})
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}
	return fn(services.NewPatientService(store, services.WithLogger(o.log)))
}

func recordsCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect patient records",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List record numbers and patient names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withPatients(cmd.Context(), func(svc services.PatientService) error {
				list, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, r := range list {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.ID, r.PatientName)
				}
				return nil
			})
		},
	})

	var output string
	chart := &cobra.Command{
		Use:   "chart <record-number>",
		Short: "Write a printable PDF chart for a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withPatients(cmd.Context(), func(svc services.PatientService) error {
				rec, err := svc.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				var buf bytes.Buffer
				if err := export.RecordPDF(&buf, args[0], rec, time.Now()); err != nil {
					return err
				}
				return writeOutput(cmd, output, buf.Bytes())
			})
		},
	}
	chart.Flags().StringVarP(&output, "output", "o", "", "output file (stdout when empty or -)")
	cmd.AddCommand(chart)

	return cmd
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func indexCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect the scanner index workbook",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the index rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := index.Open(cmd.Context(), index.Options{
				BaseDir: o.baseDir,
				File:    o.indexFile,
				Logger:  o.log,
			})
			if err != nil {
				return err
			}
			entries, err := idx.Entries(cmd.Context())
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", e.Number, e.Type, e.File)
			}
			return nil
		},
	})
	return cmd
}

func labelCmd() *cobra.Command {
	var (
		output        string
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "label <record-number>",
		Short: "Write a Code 128 barcode PNG for a record number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			png, err := label.Code128PNG(args[0], width, height)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, png)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout when empty or -)")
	cmd.Flags().IntVar(&width, "width", label.DefaultWidth, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", label.DefaultHeight, "image height in pixels")
	return cmd
}

func secretCmd() *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Print a random session secret for the web front-end (-s)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if size < 16 {
				return fmt.Errorf("%w: secret needs at least 16 bytes, got %d", common.ErrInvalidInput, size)
			}
			secret, err := common.MakeRandHexString(size)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), secret)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "bytes", 32, "random bytes before hex encoding")
	return cmd
}

// Package emails manages the employee address book.
package emails

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lezzdif22/payslip/cmd/common"
	"github.com/lezzdif22/payslip/cmd/root"
	"github.com/lezzdif22/payslip/internal/fileutils"
	"github.com/lezzdif22/payslip/internal/models"
	"github.com/lezzdif22/payslip/internal/store"
	"github.com/lezzdif22/payslip/internal/validation"
)

// ErrNoKey is returned when none of --seq, --account and --name is given.
var ErrNoKey = errors.New("one of --seq, --account or --name is required")

// Keys are the identifiers an entry is stored or looked up by.
type Keys struct {
	Seq       string
	AccountNo string
	Name      string
}

var (
	keys  Keys
	email string
)

// Cmd represents the emails command
var Cmd = &cobra.Command{
	Use:   "emails",
	Short: "Manage the employee address book",
	Long: `Manage the address book used to find where payslips are sent. Entries are
keyed by sequence number, account number and name; a lookup tries them in that
order and returns the most recently updated match.

Example:
  payslip emails set --seq 12 --name "Cruz, Juan" --email juan@example.com
  payslip emails lookup --name "cruz, juan"
  payslip emails import emails.csv
  payslip emails export -o emails.csv`,
}

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Store an address",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := Set(cmd.Context(), common.Stdout, book(), keys, email); err != nil {
			root.GetLogrusAdapter().Fatalf("Error storing address: %v", err)
		}
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Find the address of an employee",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := Lookup(cmd.Context(), common.Stdout, book(), keys); err != nil {
			root.GetLogrusAdapter().Fatalf("Error looking up address: %v", err)
		}
	},
}

var importCmd = &cobra.Command{
	Use:   "import <emails.csv>",
	Short: "Merge a CSV file (seq,account_no,name,email) into the address book",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := Import(cmd.Context(), common.Stdout, book(), args[0]); err != nil {
			root.GetLogrusAdapter().Fatalf("Error importing addresses: %v", err)
		}
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the address book as CSV (to --output or stdout)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := Export(cmd.Context(), common.Stdout, book(), root.SharedFlags.Output); err != nil {
			root.GetLogrusAdapter().Fatalf("Error exporting addresses: %v", err)
		}
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every stored address, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := List(cmd.Context(), common.Stdout, book()); err != nil {
			root.GetLogrusAdapter().Fatalf("Error listing addresses: %v", err)
		}
	},
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of stored addresses",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		n, err := book().Count(cmd.Context())
		if err != nil {
			root.GetLogrusAdapter().Fatalf("Error counting addresses: %v", err)
		}
		fmt.Fprintln(common.Stdout, n)
	},
}

func init() {
	for _, c := range []*cobra.Command{setCmd, lookupCmd} {
		c.Flags().StringVar(&keys.Seq, "seq", "", "Employee sequence number")
		c.Flags().StringVar(&keys.AccountNo, "account", "", "Employee account number")
		c.Flags().StringVar(&keys.Name, "name", "", "Employee name")
	}
	setCmd.Flags().StringVar(&email, "email", "", "Email address")
	_ = setCmd.MarkFlagRequired("email")

	root.AddStoreFlags(Cmd.PersistentFlags())
	Cmd.AddCommand(setCmd, lookupCmd, importCmd, exportCmd, listCmd, countCmd)
}

func book() store.AddressBook {
	return root.GetContainer().GetStore()
}

// Set validates and stores one address.
func Set(ctx context.Context, w io.Writer, b store.AddressBook, k Keys, addr string) error {
	entry := store.Entry{Seq: k.Seq, AccountNo: k.AccountNo, Name: k.Name, Email: addr}
	if len(entry.Keys()) == 0 {
		return ErrNoKey
	}
	if k.Seq != "" {
		if _, err := strconv.Atoi(k.Seq); err != nil {
			return fmt.Errorf("invalid --seq %q: %w", k.Seq, err)
		}
	}
	if err := validation.IsValidEmail(addr); err != nil {
		return err
	}
	if err := b.Remember(ctx, entry); err != nil {
		return err
	}
	fmt.Fprintf(w, "Stored %s\n", store.NormalizeEmail(addr))
	return nil
}

// Lookup prints the address for k, or fails when none is stored.
func Lookup(ctx context.Context, w io.Writer, b store.AddressBook, k Keys) error {
	var seq *int
	if k.Seq != "" {
		n, err := strconv.Atoi(k.Seq)
		if err != nil {
			return fmt.Errorf("invalid --seq %q: %w", k.Seq, err)
		}
		seq = &n
	}
	lookupKeys := models.BuildLookupKeys(seq, k.AccountNo, k.Name)
	if len(lookupKeys) == 0 {
		return ErrNoKey
	}

	addr, err := b.Lookup(ctx, lookupKeys)
	if err != nil {
		return err
	}
	if addr == "" {
		return fmt.Errorf("no address stored for %+v", k)
	}
	fmt.Fprintln(w, addr)
	return nil
}

// Import merges a legacy emails.csv file into b.
func Import(ctx context.Context, w io.Writer, b store.AddressBook, path string) error {
	if err := validation.IsValidPath(path); err != nil {
		return err
	}
	f, err := os.Open(path) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	n, err := store.ImportCSV(ctx, b, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Imported %d address(es)\n", n)
	return nil
}

// Export writes the address book to path, or to w when path is empty.
func Export(ctx context.Context, w io.Writer, b store.AddressBook, path string) error {
	if path == "" {
		_, err := store.ExportCSV(ctx, b, w)
		return err
	}

	f, err := fileutils.CreateFile(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	n, err := store.ExportCSV(ctx, b, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Exported %d address(es) to %s\n", n, path)
	return nil
}

// List prints every entry, newest first.
func List(ctx context.Context, w io.Writer, b store.AddressBook) error {
	entries, err := b.All(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tACCOUNT\tNAME\tEMAIL\tUPDATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Seq, e.AccountNo, e.Name, e.Email, e.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

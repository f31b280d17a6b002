package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/platinummonkey/langreg/pkg/properties"
	"github.com/platinummonkey/langreg/pkg/registration"
)

// registrationView is the JSON form of one artifact entry
type registrationView struct {
	Entry              int      `json:"entry"`
	ClassName          string   `json:"className"`
	ID                 string   `json:"id,omitempty"`
	Name               string   `json:"name"`
	ImplementationName string   `json:"implementationName"`
	Version            string   `json:"version"`
	MimeTypes          []string `json:"mimeTypes,omitempty"`
	DependentLanguages []string `json:"dependentLanguages,omitempty"`
	Interactive        bool     `json:"interactive"`
	Internal           bool     `json:"internal"`
}

func newInspectCommand(stdout io.Writer) *Command {
	cmd := &Command{
		Name:        "inspect",
		Description: "Print the registrations in a generated artifact",
		Flags:       flag.NewFlagSet("inspect", flag.ContinueOnError),
	}

	asJSON := cmd.Flags.Bool("json", false, "Print registrations as JSON")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if cmd.Flags.NArg() != 1 {
			return fmt.Errorf("exactly one artifact file is required")
		}
		return runInspect(cmd.Flags.Arg(0), *asJSON, stdout)
	}

	return cmd
}

func runInspect(path string, asJSON bool, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	p, err := properties.Load(f)
	if err != nil {
		return err
	}

	entries := registration.Decode(p)
	views := make([]registrationView, 0, len(entries))
	for i, e := range entries {
		m := e.Metadata
		views = append(views, registrationView{
			Entry:              i + 1,
			ClassName:          e.ClassName,
			ID:                 m.ID,
			Name:               m.Name,
			ImplementationName: m.ImplementationName,
			Version:            m.Version,
			MimeTypes:          m.MimeTypes,
			DependentLanguages: m.DependentLanguages,
			Interactive:        m.Interactive,
			Internal:           m.Internal,
		})
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	if len(views) == 0 {
		fmt.Fprintln(out, "No registrations found")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ENTRY\tID\tNAME\tVERSION\tCLASS\tDEPENDS ON")
	for _, v := range views {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			v.Entry, v.ID, v.Name, v.Version, v.ClassName, strings.Join(v.DependentLanguages, ","))
	}
	return tw.Flush()
}

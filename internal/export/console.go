package export

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kwheaton/canvass/internal/entity"
)

// WriteTable prints the core fields of records as an aligned table.
func WriteTable(w io.Writer, records []*entity.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LAST\tFIRST\tOCCUPATION\tHOME ADDRESS")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			rec.Surname, rec.GivenName, rec.Occupation, rec.HomeAddress)
	}
	return tw.Flush()
}

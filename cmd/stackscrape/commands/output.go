package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"stackscrape/internal/scrapers/stackoverflow"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "    ")
	return encoder.Encode(value)
}

func parseIds(args []string) ([]int64, error) {
	ids := make([]int64, len(args))
	for i, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", arg, err)
		}
		ids[i] = id
	}
	return ids, nil
}

func formatDate(ts *int64) string {
	if ts == nil {
		return "-"
	}
	return time.Unix(*ts, 0).UTC().Format(time.DateTime)
}

func formatInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func formatOwner(owner stackoverflow.Owner) string {
	if owner.UserType != stackoverflow.UserRegistered {
		return fmt.Sprintf("%s (%s)", owner.DisplayName, owner.UserType)
	}
	if owner.Reputation == nil {
		return owner.DisplayName
	}
	return fmt.Sprintf("%s (%d)", owner.DisplayName, *owner.Reputation)
}

package cmd

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/donaldgifford/secondhand-client/internal/listing"
	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

const clearScreen = "\033[H\033[2J"

// pageThrough runs an interactive pager over coord until q, end of input or
// ctx is done. Every page change resets the view: the screen is cleared on
// a terminal, otherwise a blank line separates pages.
func (a *app) pageThrough(ctx context.Context, coord *listing.Coordinator) error {
	reset := "\n"
	if isTerminal(a.out) {
		reset = clearScreen
	}
	unsubscribe := coord.OnScrollReset(func() { a.printf("%s", reset) })
	defer unsubscribe()

	sc := bufio.NewScanner(a.in)
	for {
		a.printf("[n]ext, [p]rev, page number, [r]efresh, [q]uit> ")
		if ctx.Err() != nil || !sc.Scan() {
			a.printf("\n")
			return sc.Err()
		}

		st := coord.Snapshot()
		line := strings.ToLower(strings.TrimSpace(sc.Text()))
		var err error
		switch line {
		case "":
			continue
		case "q", "quit":
			return nil
		case "n", "next":
			if st.CurrentPage >= st.TotalPages {
				a.printf("Already on the last page.\n")
				continue
			}
			err = coord.ChangePage(ctx, st.CurrentPage+1)
		case "p", "prev":
			if st.CurrentPage <= 1 {
				a.printf("Already on the first page.\n")
				continue
			}
			err = coord.ChangePage(ctx, st.CurrentPage-1)
		case "r", "refresh":
			err = coord.Refresh(ctx)
		default:
			n, convErr := strconv.Atoi(line)
			if convErr != nil || n < 1 || n > st.TotalPages {
				a.printf("Unknown command %q.\n", line)
				continue
			}
			err = coord.ChangePage(ctx, n)
		}

		if err != nil {
			if errors.Is(err, domain.ErrAuthRequired) {
				return a.authFailed(err)
			}
			a.printf("Failed: %s\n", domain.Message(err))
			continue
		}
		if err := printPage(a.out, coord.Scope(), coord.Snapshot()); err != nil {
			return err
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
	"rsc.io/qr"

	"github.com/Conte777/mediaflow/internal/task"
)

// Console renders task events to a terminal and answers prompts
type Console struct {
	out io.Writer

	inMu sync.Mutex
	in   *bufio.Reader

	// readPassword reads a line without echo when stdin is a terminal
	readPassword func() (string, error)

	bar      *progressbar.ProgressBar
	barTotal int64
}

// NewConsole creates a console over in and out
func NewConsole(in io.Reader, out io.Writer) *Console {
	c := &Console{
		out: out,
		in:  bufio.NewReader(in),
	}
	c.readPassword = c.defaultReadPassword
	return c
}

// Printf writes a formatted line
func (c *Console) Printf(format string, args ...any) {
	c.finishBar()
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Handle renders e. Prompt events are answered asynchronously through r.
func (c *Console) Handle(r *task.Runner, e task.Event) {
	switch e.Type {
	case task.EventStatus:
		c.Printf("%s", e.Message)
		if e.Slot != "" {
			go c.answer(r, e.Slot)
		}
	case task.EventLog:
		c.Printf("%s", e.Message)
	case task.EventProgress:
		c.progress(e)
	case task.EventQR:
		c.finishBar()
		RenderQR(c.out, e.Message)
		fmt.Fprintln(c.out, e.Message)
	default:
		if e.Terminal() {
			c.finishBar()
		}
	}
}

func (c *Console) answer(r *task.Runner, slot task.Slot) {
	var (
		value string
		err   error
	)
	if slot == task.SlotPassword {
		value, err = c.readPassword()
	} else {
		value, err = c.readLine()
	}
	if err != nil {
		return
	}
	r.Supply(slot, value)
}

func (c *Console) readLine() (string, error) {
	c.inMu.Lock()
	defer c.inMu.Unlock()

	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) defaultReadPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return c.readLine()
	}

	b, err := term.ReadPassword(fd)
	fmt.Fprintln(c.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// progress updates the bar of the current file, starting a new bar when the
// total changes
func (c *Console) progress(e task.Event) {
	total := e.Total
	if total <= 0 {
		total = -1
	}

	if c.bar == nil || c.barTotal != total {
		c.finishBar()
		c.bar = progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(c.out),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(100),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
		c.barTotal = total
	}

	c.bar.Describe(e.Message)
	_ = c.bar.Set64(e.Done)
}

func (c *Console) finishBar() {
	if c.bar == nil {
		return
	}
	_ = c.bar.Finish()
	c.bar = nil
	c.barTotal = 0
}

// RenderQR draws url as a QR code using half-block characters, two modules
// per character row
func RenderQR(w io.Writer, url string) {
	code, err := qr.Encode(url, qr.L)
	if err != nil {
		fmt.Fprintf(w, "cannot render QR code: %v\n", err)
		return
	}

	const quiet = 2
	black := func(x, y int) bool {
		if x < 0 || y < 0 || x >= code.Size || y >= code.Size {
			return false
		}
		return code.Black(x, y)
	}

	var b strings.Builder
	for y := -quiet; y < code.Size+quiet; y += 2 {
		for x := -quiet; x < code.Size+quiet; x++ {
			top, bottom := black(x, y), black(x, y+1)
			switch {
			case top && bottom:
				b.WriteRune(' ')
			case top:
				b.WriteRune('▄')
			case bottom:
				b.WriteRune('▀')
			default:
				b.WriteRune('█')
			}
		}
		b.WriteByte('\n')
	}

	fmt.Fprint(w, b.String())
}

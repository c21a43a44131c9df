package cli

import (
	"fmt"
	"io"

	"github.com/studiowebux/text2image/internal/notice"
)

// Notifier prints notices. Failures go to errOut, everything else to out.
func Notifier(out, errOut io.Writer) notice.Notifier {
	return notice.NotifierFunc(func(n notice.Notice) {
		w := out
		if n.IsError() {
			w = errOut
		}
		fmt.Fprintln(w, n.Text())
	})
}

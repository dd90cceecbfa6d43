package sink

import (
	"bufio"
	"errors"
	"io"
)

// copyBatch is the number of lines handed to WriteLines at once.
const copyBatch = 64

// CopyLines reads r line by line and forwards the lines, terminators included,
// to w. A final line without a terminator is forwarded as is. It returns the
// number of bytes forwarded.
//
// Lines are batched into [Writable.WriteLines] calls, so memory use is bounded
// by the batch rather than by the size of r.
func CopyLines(w Writable, r io.Reader) (int64, error) {
	br := bufio.NewReader(r)
	batch := make([]string, 0, copyBatch)
	var pending, total int64

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := w.WriteLines(batch); err != nil {
			return err
		}
		total += pending
		pending = 0
		batch = batch[:0]
		return nil
	}

	for {
		line, err := br.ReadString('\n')
		if line != "" {
			batch = append(batch, line)
			pending += int64(len(line))
			if len(batch) == copyBatch {
				if ferr := flush(); ferr != nil {
					return total, ferr
				}
			}
		}
		if errors.Is(err, io.EOF) {
			ferr := flush()
			return total, ferr
		}
		if err != nil {
			if ferr := flush(); ferr != nil {
				return total, ferr
			}
			return total, err
		}
	}
}

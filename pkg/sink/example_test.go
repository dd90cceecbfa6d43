package sink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/dotsink/pkg/sink"
)

func ExampleWith() {
	var buf sink.Buffer

	err := sink.With(&buf, func(w sink.Writable) error {
		return w.WriteLines([]string{"digraph {\n", "  a -> b;\n", "}\n"})
	})

	fmt.Println("error:", err)
	fmt.Print(buf.String())
	// Output:
	// error: <nil>
	// digraph {
	//   a -> b;
	// }
}

func ExampleCopyLines() {
	var buf sink.Buffer
	_ = buf.Acquire()

	n, _ := sink.CopyLines(&buf, strings.NewReader("a;\nb;\n"))
	_ = buf.Release()

	fmt.Println(n, strings.Count(buf.String(), "\n"))
	// Output: 6 2
}

func ExampleDot_Args() {
	d := sink.New("test", "png", sink.WithSideFile(true))

	fmt.Println(d.Args())
	fmt.Println(d.SideFilePath())
	// Output:
	// [dot -Tpng -o test.png]
	// test.dot
}

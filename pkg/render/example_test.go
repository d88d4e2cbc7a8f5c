package render_test

import (
	"fmt"

	"github.com/matzehuels/depforce/pkg/render"
)

func ExampleParseFormat() {
	for _, name := range []string{"svg", "JPEG", "pdf"} {
		f, err := render.ParseFormat(name)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Println(f, f.ContentType())
	}
	// Output:
	// svg image/svg+xml
	// jpg image/jpeg
	// error: INVALID_FORMAT: unknown format "pdf"
}

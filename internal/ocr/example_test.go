package ocr_test

import (
	"context"
	"fmt"
	"strings"

	"smartfill/internal/ocr"
)

// Example reads a text document without contacting any recognition API.
func Example() {
	name := "receipt.txt"
	body := "Coffee Corner\r\nTotal 4.50\r\n"

	mimeType := ocr.DetectMimeType(name, []byte(body))
	res, err := ocr.PlainText{}.Text(context.Background(), strings.NewReader(body), mimeType)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(mimeType, res.PageCount)
	fmt.Print(res.Text)
	// Output:
	// text/plain 1
	// Coffee Corner
	// Total 4.50
}

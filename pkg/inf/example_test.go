package inf_test

import (
	"fmt"

	"github.com/matzehuels/infcat/pkg/inf"
)

func ExampleDescriptor_FirstLine() {
	d, err := inf.Parse([]byte(`[Install]
CopyFiles = @driver.sys
AddReg = Install.Reg
CopyFiles = Install.Files
`), "example.inf", inf.Options{})
	if err != nil {
		panic(err)
	}
	defer d.Close()

	c, err := d.FirstLine("Install", "CopyFiles")
	if err != nil {
		panic(err)
	}
	for ok := true; ok; ok = c.Next() {
		v, _ := c.Field(1)
		fmt.Println(v)
	}
	// Output:
	// @driver.sys
	// Install.Files
}

package cvpro_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aretw0/cvpro"
)

// Example_basic opens a CV in a temporary directory, edits it and reads it back.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "cvpro-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	ws, err := cvpro.Open(ctx, tmpDir, cvpro.WithVersioning(false))
	if err != nil {
		log.Fatal(err)
	}
	defer ws.Close(ctx)

	ws.Set("personal.fullName", "Ada Lovelace")
	ws.Set("jobs.job-1.date", "1842 - 1843")

	name, _ := ws.Get("personal.fullName")
	end, _ := ws.Get("jobs.job-1.endDate")
	fmt.Println(name, end)
	// Output:
	// Ada Lovelace 1843
}

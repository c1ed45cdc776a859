// Command report writes the per-symbol CSV summary for one day of the
// trade log. With no flags it summarizes the current UTC day.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"pullback-bot/internal/report"
)

func main() {
	_ = godotenv.Load()
	day := flag.String("date", "", "UTC day to summarize (YYYY-MM-DD), default today")
	flag.Parse()

	t := time.Now().UTC()
	if *day != "" {
		var err error
		t, err = time.Parse("2006-01-02", *day)
		if err != nil {
			log.Fatalf("bad -date: %v", err)
		}
	}

	path, err := report.SummarizeDay(t)
	if err != nil {
		log.Fatal(err)
	}
	if path == "" {
		fmt.Println("no trades for", t.Format("2006-01-02"))
		return
	}
	fmt.Println("summary written:", path)
}

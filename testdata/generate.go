// Generate writes the sample files used for manual testing of pqview:
//
//	cd testdata && go run generate.go
package main

import (
	"log"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
)

type User struct {
	ID     int64   `parquet:"id"`
	Name   string  `parquet:"name"`
	Age    int32   `parquet:"age"`
	Active bool    `parquet:"active"`
	Score  float64 `parquet:"score"`
}

type Event struct {
	ID       int64     `parquet:"id,delta"`
	Kind     string    `parquet:"kind,dict,zstd"`
	Day      int32     `parquet:"day,date"`
	At       int64     `parquet:"at,timestamp(microsecond)"`
	Amount   int64     `parquet:"amount,decimal(2:18)"`
	Note     *string   `parquet:"note,optional"`
	Tags     []string  `parquet:"tags"`
	Ratio    float32   `parquet:"ratio,split"`
	Received time.Time `parquet:"received"`
}

func write[T any](name string, rows []T, opts ...parquet.WriterOption) {
	file, err := os.Create(name)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[T](file, opts...)
	if _, err := writer.Write(rows); err != nil {
		log.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		log.Fatal(err)
	}
	log.Printf("Generated %s with %d rows", name, len(rows))
}

func main() {
	write("simple.parquet", []User{
		{ID: 1, Name: "alice", Age: 30, Active: true, Score: 95.5},
		{ID: 2, Name: "bob", Age: 25, Active: false, Score: 82.3},
		{ID: 3, Name: "charlie", Age: 35, Active: true, Score: 88.7},
		{ID: 4, Name: "diana", Age: 28, Active: true, Score: 91.2},
		{ID: 5, Name: "eve", Age: 42, Active: false, Score: 76.8},
	})

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	note := "late"
	events := make([]Event, 2500)
	for i := range events {
		at := start.Add(time.Duration(i) * time.Minute)
		events[i] = Event{
			ID:       int64(i),
			Kind:     []string{"click", "view", "purchase"}[i%3],
			Day:      int32(at.Unix() / 86400),
			At:       at.UnixMicro(),
			Amount:   int64(i * 125),
			Tags:     []string{"a", "b"}[:i%2+1],
			Ratio:    float32(i) / 7,
			Received: at.Add(time.Second),
		}
		if i%10 == 0 {
			events[i].Note = &note
		}
	}
	write("events.parquet", events, parquet.MaxRowsPerRowGroup(1000), parquet.Compression(&parquet.Snappy))
}

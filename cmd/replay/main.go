package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nergy-se/energybridge/pkg/energy"
	"github.com/nergy-se/energybridge/pkg/reading"
	"github.com/sirupsen/logrus"
)

var maxDelay = flag.Int64("max-delay", 60, "seconds between two readings before deltas are reported as 0")
var timeZone = flag.String("time-zone", "Local", "zone for meter times without offset")

// replay reads newline delimited meter messages and prints the derived fields
// of each as one JSON line.
func main() {
	file := flag.String("file", "", "file with one JSON reading per line, stdin if empty")
	flag.Parse()

	in := io.Reader(os.Stdin)
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			logrus.Fatal(err)
		}
		defer f.Close()
		in = f
	}

	loc, err := time.LoadLocation(*timeZone)
	if err != nil {
		logrus.Fatal(err)
	}

	stats, err := replay(in, os.Stdout, energy.NewDeriver(*maxDelay, loc))
	if err != nil {
		logrus.Fatal(err)
	}
	logrus.Infof("replayed %d readings, %d failed, %d diagnostics", stats.readings, stats.failed, stats.diagnostics)
}

type stats struct {
	readings    int
	failed      int
	diagnostics int
}

func replay(in io.Reader, out io.Writer, deriver *energy.Deriver) (stats, error) {
	s := stats{}
	totals := &energy.Totals{}
	enc := json.NewEncoder(out)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		payload := scanner.Bytes()
		if len(payload) == 0 {
			continue
		}
		s.readings++

		snapshot, err := reading.Parse(payload)
		if err != nil {
			s.failed++
			logrus.Errorf("line %d: %s", line, err)
			continue
		}
		fields, err := deriver.Derive(snapshot, totals)
		if err != nil {
			s.failed++
			logrus.Errorf("line %d: %s", line, err)
			continue
		}
		s.diagnostics += len(fields.Diagnostics)

		err = enc.Encode(fields)
		if err != nil {
			return s, fmt.Errorf("error writing output: %w", err)
		}
	}
	return s, scanner.Err()
}

// tracecat prints planner trace files (*.jsonl.zst) as plain JSON lines.
// Given a directory it prints every "plans" trace in it, oldest first.
// An optional agent id ("idx:gen") keeps only that robot's records.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/redsoil/colony/internal/trace"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: tracecat <trace.jsonl.zst | dir> [agent]")
		os.Exit(1)
	}
	agent := ""
	if len(os.Args) > 2 {
		agent = os.Args[2]
	}

	files, err := inputs(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	total := 0
	for _, path := range files {
		n, err := dump(out, path, agent)
		total += n
		if err != nil {
			out.Flush()
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			os.Exit(1)
		}
	}
	fmt.Fprintf(os.Stderr, "%d records from %d files\n", total, len(files))
}

func inputs(arg string) ([]string, error) {
	fi, err := os.Stat(arg)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return []string{arg}, nil
	}
	files, err := trace.Files(arg, "plans")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no trace files in %s", arg)
	}
	return files, nil
}

func dump(w io.Writer, path, agent string) (int, error) {
	r, err := trace.Open(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	n := 0
	for {
		raw, err := r.NextRaw()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if agent != "" {
			var rec trace.PlanRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				return n, err
			}
			if rec.Agent != agent {
				continue
			}
		}
		w.Write(raw)
		io.WriteString(w, "\n")
		n++
	}
}

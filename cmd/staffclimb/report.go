package main

import (
	"fmt"
	"io"
	"text/template"
	"time"
)

// Report summarises a sim run.
type Report struct {
	// Configuration
	Runs        int
	TickBudget  int
	Parallel    int
	Preset      string
	Fingerprint string
	Seed        uint64
	Step        float64

	// Results
	Results       []SessionResult
	Elapsed       time.Duration
	Wins          int
	TotalRestarts int
	TotalSpawned  int
	TotalJumps    int
	TotalUpdates  int
	FastestWin    int
	MeanWinTicks  float64
	UpdateTime    Stats
}

// Stats is a running min/max/avg of durations.
type Stats struct {
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
	Count int
	Total time.Duration
}

// Add records a sample.
func (s *Stats) Add(d time.Duration) {
	if s.Count == 0 || d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
	s.Count++
	s.Total += d
}

// Merge folds o into s.
func (s *Stats) Merge(o Stats) {
	if o.Count == 0 {
		return
	}
	if s.Count == 0 || o.Min < s.Min {
		s.Min = o.Min
	}
	if o.Max > s.Max {
		s.Max = o.Max
	}
	s.Count += o.Count
	s.Total += o.Total
}

// Finalize computes the average.
func (s *Stats) Finalize() {
	if s.Count == 0 {
		return
	}
	s.Avg = s.Total / time.Duration(s.Count)
}

// Finalize aggregates the per-session results.
func (r *Report) Finalize() {
	winTicks := 0
	for _, res := range r.Results {
		r.TotalRestarts += res.Restarts
		r.TotalSpawned += res.Spawned
		r.TotalJumps += res.Jumps
		r.TotalUpdates += res.Ticks
		r.UpdateTime.Merge(res.Update)
		if res.Won {
			r.Wins++
			winTicks += res.Ticks
			if r.FastestWin == 0 || res.Ticks < r.FastestWin {
				r.FastestWin = res.Ticks
			}
		}
	}
	if r.Wins > 0 {
		r.MeanWinTicks = float64(winTicks) / float64(r.Wins)
	}
	r.UpdateTime.Finalize()
}

// Generate writes the report as markdown.
func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# staffclimb Simulation Report

## Configuration
- **Sessions:** {{.Runs}} ({{.Parallel}} at once)
- **Tick Budget:** {{.TickBudget}} ({{seconds .TickBudget .Step}})
- **Preset:** {{.Preset}}
- **Config Fingerprint:** {{.Fingerprint}}
- **Base Seed:** {{.Seed}}

## Results
- **Wins:** {{.Wins}} / {{.Runs}} ({{percent .Wins .Runs}})
{{- if .Wins}}
- **Fastest Win:** {{.FastestWin}} ticks ({{seconds .FastestWin .Step}})
- **Mean Ticks To Win:** {{printf "%.0f" .MeanWinTicks}}
{{- end}}
- **Restarts:** {{.TotalRestarts}}
- **Platforms Spawned:** {{.TotalSpawned}}
- **Jumps:** {{.TotalJumps}}

## Performance
- **Wall Time:** {{.Elapsed}}
- **Updates:** {{.TotalUpdates}}
- **Update Time:**
  - **Avg:** {{.UpdateTime.Avg}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}

## Sessions
| # | Seed | Won | Ticks | Restarts | Spawned | Jumps | Avg Update |
|---|------|-----|-------|----------|---------|-------|------------|
{{- range .Results}}
| {{.Index}} | {{.Seed}} | {{if .Won}}yes{{else}}no{{end}} | {{.Ticks}} | {{.Restarts}} | {{.Spawned}} | {{.Jumps}} | {{.Update.Avg}} |
{{- end}}
`

	fm := template.FuncMap{
		"percent": func(a, b int) string {
			if b == 0 {
				return "0%"
			}
			return fmt.Sprintf("%.1f%%", 100*float64(a)/float64(b))
		},
		"seconds": func(ticks int, step float64) string {
			return (time.Duration(float64(ticks) * step * float64(time.Second))).Round(time.Second).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, r)
}

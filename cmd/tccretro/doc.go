// Command tccretro turns a TaskChute Cloud timeline export into a
// retrospective report with per-project, per-mode, and routine analysis,
// Japanese calendar context, and optional narrative feedback.
//
// Usage:
//
//	tccretro analyze --csv timeline.csv [--date 2025-11-03 | --start 2025-11-01 --end 2025-11-07] [--no-ai]
//	tccretro calendar --start 2025-11-01 --end 2025-11-30
//	tccretro history list [--limit 20] | show <run-id> | prune --keep 50
//	tccretro feedback check
//	tccretro config init|validate|show
package main

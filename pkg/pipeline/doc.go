// Package pipeline implements the three stages that turn remote results into
// one CGPA per student.
//
// Fetch (Fetcher) walks every (semester, student) pair, skips pairs whose
// artifact already exists, and stores each non-empty result set under
// "<semester>/<student>.json". InfoFetcher does the same for student
// profiles and assembles them into a single array file.
//
// Merge (Merger) concatenates every student's semester artifacts into
// "combined_<student>.json".
//
// Aggregate (Aggregator) keeps the best attempt of every course and writes
// the credit-weighted average of each student to "student_cgpas.json".
//
// Each stage reads only what the previous one wrote, so any stage can be
// re-run on its own. Faults scoped to one key or file are logged and
// recorded in the stage summary; only faults that make the whole stage
// meaningless are returned as errors.
package pipeline

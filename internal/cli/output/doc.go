// Package output renders command results for stripedmap-cli.
//
// Results are plain structs (workload reports, map statistics, build
// information, configuration). The table formatter flattens nested structs
// into dotted FIELD/VALUE rows and renders slices of structs as column
// tables; json and yaml formatters encode the value as is.
//
// Progress draws a single refreshing status line on a terminal while a
// workload runs.
package output

// Package textutil holds small string helpers shared by the chart renderer,
// the report compositor, and the output writer: filesystem-safe tokens and
// display-width aware truncation for table cells.
package textutil

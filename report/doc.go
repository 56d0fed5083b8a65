// Package report renders classifier results: plain text, MIREX and JAMS
// for global estimates, CSV and NumPy arrays for tempograms, and PNG plots
// for both.
package report

// Command localthickness runs the local thickness pipeline against a
// synthetic test volume, optionally persisting the run and a false-color
// slice preview.
package main

func main() {
	Execute()
}

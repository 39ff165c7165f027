package main

import "fmt"

// repeatableFlag collects every occurrence of a flag.Var-backed flag, for
// --top <name> which spec.md §6 says "may repeat".
type repeatableFlag []string

func (r *repeatableFlag) String() string {
	if r == nil {
		return ""
	}
	return fmt.Sprint([]string(*r))
}

func (r *repeatableFlag) Set(v string) error {
	*r = append(*r, v)
	return nil
}

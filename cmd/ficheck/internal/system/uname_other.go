//go:build !unix

package system

// fillUname keeps the runtime values where there is no uname(2)
func fillUname(*Info) {}

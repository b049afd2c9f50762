package data

// ComparePaths orders two paths component by component. Bytes are compared
// as usual except that '/' sorts below every other byte, so a directory's
// descendants come right after it and before any sibling sharing its prefix
// ("/a", "/a/x", "/a-b"). This is the pre-order the walker emits.
func ComparePaths(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ca, cb := a[i], b[i]
		if ca == cb {
			continue
		}
		switch {
		case ca == '/':
			return -1
		case cb == '/':
			return 1
		case ca < cb:
			return -1
		default:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

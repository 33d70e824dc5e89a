package vkrt

// Status is satisfied by generated status enums.
type Status interface {
	~int32
	Check() error
}

// Enumerate runs the two-call idiom: the first call reports how many items
// exist, the second fills a slice of that size. When the second call
// reports incomplete, because the set grew in between, it starts over.
func Enumerate[T any, S Status](incomplete S, call func(count *uint32, items *T) S) ([]T, error) {
	for {
		var n uint32
		if err := call(&n, nil).Check(); err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, nil
		}
		items := make([]T, n)
		status := call(&n, &items[0])
		if status == incomplete {
			continue
		}
		if err := status.Check(); err != nil {
			return nil, err
		}
		return items[:n], nil
	}
}

// EnumerateVoid runs the two-call idiom for commands without a status.
func EnumerateVoid[T any](call func(count *uint32, items *T)) []T {
	var n uint32
	call(&n, nil)
	if n == 0 {
		return nil
	}
	items := make([]T, n)
	call(&n, &items[0])
	return items[:n]
}

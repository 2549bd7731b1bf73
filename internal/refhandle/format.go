package refhandle

import "fmt"

// fallbackFormat renders an arbitrary comparable value to a stable string for
// hashing purposes when no faster type-switch case applies and the value has
// no String method: for example struct, array, pointer, float or bool keys.
// Callers with a hot path over such keys should supply a HashFunc via
// WithHashFunc.
func fallbackFormat(v any) string {
	return fmt.Sprintf("%#v", v)
}

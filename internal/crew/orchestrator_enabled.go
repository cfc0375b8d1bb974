//go:build crew

package crew

func init() {
	backend = Local{}
}

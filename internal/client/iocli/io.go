package iocli

// IO abstracts terminal input and output so commands can run against a
// fake in tests instead of a real TTY.
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
}

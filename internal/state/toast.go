package state

// ToastLevel is the severity of a status-bar message.
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastError
)

// Toast is a short message shown in the status bar until the next key
// press.
type Toast struct {
	Level ToastLevel
	Text  string
}

// InfoToast returns an informational toast.
func InfoToast(text string) *Toast {
	return &Toast{Level: ToastInfo, Text: text}
}

// SuccessToast returns a success toast.
func SuccessToast(text string) *Toast {
	return &Toast{Level: ToastSuccess, Text: text}
}

// ErrorToast returns an error toast.
func ErrorToast(text string) *Toast {
	return &Toast{Level: ToastError, Text: text}
}

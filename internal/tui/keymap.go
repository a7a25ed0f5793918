package tui

// Key binding constants used in handleKey.
const (
	KeyQuit   = "q"
	KeyCtrlC  = "ctrl+c"
	KeyUp     = "up"
	KeyDown   = "down"
	KeyJ      = "j"
	KeyK      = "k"
	KeyRetry  = "r"
	KeyCancel = "c"
	KeyRemove = "x"
)

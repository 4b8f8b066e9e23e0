package pipeline

// Shell receives a pipeline's progress and results. Calls for one
// navigation arrive in order from the navigating goroutine, and a
// navigation that has been superseded makes no further calls. Shell
// methods must not call back into the Pipeline.
type Shell interface {
	OnProgress(fraction float64)
	OnStatus(message string)
	OnRendered(page *Page)
	OnError(message string)
}

// NopShell ignores everything.
type NopShell struct{}

func (NopShell) OnProgress(float64) {}
func (NopShell) OnStatus(string)    {}
func (NopShell) OnRendered(*Page)   {}
func (NopShell) OnError(string)     {}

// ShellFuncs adapts plain functions to a Shell. Nil fields are skipped.
type ShellFuncs struct {
	Progress func(fraction float64)
	Status   func(message string)
	Rendered func(page *Page)
	Error    func(message string)
}

func (f ShellFuncs) OnProgress(fraction float64) {
	if f.Progress != nil {
		f.Progress(fraction)
	}
}

func (f ShellFuncs) OnStatus(message string) {
	if f.Status != nil {
		f.Status(message)
	}
}

func (f ShellFuncs) OnRendered(page *Page) {
	if f.Rendered != nil {
		f.Rendered(page)
	}
}

func (f ShellFuncs) OnError(message string) {
	if f.Error != nil {
		f.Error(message)
	}
}

package builder

// DropSignal describes one drop onto the canvas.
type DropSignal struct {
	Item   string `json:"item"`
	Module string `json:"module"`
	Index  int    `json:"index"`
}

// AddSignals is sent when a toolbox card is dropped on the canvas.
type AddSignals struct {
	Workspace string     `json:"workspace"`
	Drop      DropSignal `json:"drop"`
}

// ReorderSignals carries the canvas node ids in their new order.
type ReorderSignals struct {
	Workspace string   `json:"workspace"`
	Order     []string `json:"order"`
}

// SettingsSignals names the canvas node whose settings were requested.
type SettingsSignals struct {
	Workspace string `json:"workspace"`
	Target    string `json:"target"`
}

// DialogSignals carries the checked project ids of the open dialog.
type DialogSignals struct {
	Workspace string   `json:"workspace"`
	Picked    []string `json:"picked"`
}

// workspaceSignals is the part every builder event carries.
type workspaceSignals struct {
	Workspace string `json:"workspace"`
}

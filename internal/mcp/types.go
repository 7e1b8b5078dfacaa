package mcp

// ReorderInput is the input for the reorder_windows tool.
type ReorderInput struct {
	Order []int `json:"order" jsonschema:"required,Four distinct values 1-4 assigning a window to each display slot left to right (1=Server, 2=Client 1, 3=Client 2, 4=Client 3)"`
}

// ReorderOutput is the output for the reorder_windows tool.
type ReorderOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   []int  `json:"order,omitempty"`
}

// StatusInput is the input for the get_status tool.
type StatusInput struct{}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	WindowsFound  int               `json:"windows_found"`
	CurrentOrder  []int             `json:"current_order"`
	WindowMapping map[string]string `json:"window_mapping"`
}

// PositionInput is the input for the position_windows tool.
type PositionInput struct{}

// PositionOutput is the output for the position_windows tool.
type PositionOutput struct {
	WindowsFound int `json:"windows_found"`
	Placed       int `json:"placed"`
}

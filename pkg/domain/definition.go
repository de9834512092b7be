package domain

// Definition is a named machine: a table plus its start and halt states.
type Definition struct {
	Name        string
	Description string
	Start       ControlState
	Table       *Table
}

// Halt returns the halt state of the underlying table.
func (d *Definition) Halt() ControlState {
	return d.Table.Halt()
}

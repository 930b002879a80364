package cart

// Line is one cart entry, identified by (ProductID, Size). ProductID names a
// concrete size variant, not the grouped product.
type Line struct {
	ProductID uint    `json:"productId"`
	Size      string  `json:"size"`
	Name      string  `json:"productName"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Qty       int     `json:"qty"`
}

// Cart keeps lines in insertion order for display. Totals are always
// recomputed from the line sequence; nothing is maintained incrementally.
type Cart struct {
	Lines []Line `json:"lines"`
}

func (c *Cart) find(productID uint, size string) *Line {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID && c.Lines[i].Size == size {
			return &c.Lines[i]
		}
	}
	return nil
}

// Add merges by (ProductID, Size): an existing line's quantity grows by the
// added quantity, otherwise the line is appended. A non-positive Qty counts
// as 1. Stock limits are the caller's business, checked against the resolved
// variant before calling.
func (c *Cart) Add(l Line) {
	if l.Qty <= 0 {
		l.Qty = 1
	}
	if existing := c.find(l.ProductID, l.Size); existing != nil {
		existing.Qty += l.Qty
		return
	}
	c.Lines = append(c.Lines, l)
}

// UpdateQuantity replaces the matching line's quantity in place. A quantity
// of zero or less removes the line. Unknown keys are a silent no-op.
func (c *Cart) UpdateQuantity(productID uint, size string, qty int) {
	if qty <= 0 {
		c.Remove(productID, size)
		return
	}
	if l := c.find(productID, size); l != nil {
		l.Qty = qty
	}
}

// Remove drops the line matching the key, if present.
func (c *Cart) Remove(productID uint, size string) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID && c.Lines[i].Size == size {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }

// TotalItems is the sum of line quantities.
func (c *Cart) TotalItems() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Qty
	}
	return n
}

// TotalPrice is the sum of price*qty over all lines.
func (c *Cart) TotalPrice() float64 {
	t := 0.0
	for _, l := range c.Lines {
		t += l.Price * float64(l.Qty)
	}
	return t
}

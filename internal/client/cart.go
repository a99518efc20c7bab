package client

import "sync"

// カート内の1行
type CartItem struct {
	Product
	Quantity int64
}

// Cartはクライアント側だけで持つ買い物カゴ
// サーバーには送らない（チェックアウトはこのシステムの範囲外）
type Cart struct {
	mu    sync.Mutex
	items []CartItem
}

func NewCart() *Cart {
	return &Cart{}
}

// 既にあれば数量+1、無ければ数量1で追加
func (c *Cart) AddItem(p Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == p.ID {
			c.items[i].Quantity++
			return
		}
	}

	c.items = append(c.items, CartItem{Product: p, Quantity: 1})
}

func (c *Cart) IncrementQuantity(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == productID {
			c.items[i].Quantity++
			return
		}
	}
}

// 数量1で減らしたら行ごと消える
func (c *Cart) DecrementQuantity(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID != productID {
			continue
		}
		if c.items[i].Quantity <= 1 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		} else {
			c.items[i].Quantity--
		}
		return
	}
}

func (c *Cart) RemoveItem(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// 中身のコピーを返す
func (c *Cart) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// 合計金額
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, item := range c.items {
		total += item.Price * item.Quantity
	}
	return total
}

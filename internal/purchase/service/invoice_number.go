package service

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// InvoiceNumbers hands out unique, roughly time-ordered invoice numbers.
type InvoiceNumbers interface {
	Next() string
}

type snowflakeInvoiceNumbers struct {
	node *snowflake.Node
}

// NewInvoiceNumbers needs a node id unique per running process (0..1023).
func NewInvoiceNumbers(nodeID int64) (InvoiceNumbers, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("invoice number node %d: %w", nodeID, err)
	}
	return &snowflakeInvoiceNumbers{node: node}, nil
}

func (s *snowflakeInvoiceNumbers) Next() string {
	return "INV-" + s.node.Generate().String()
}

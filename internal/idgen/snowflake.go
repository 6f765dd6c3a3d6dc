package idgen

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init sets up the snowflake node. Only the first call has any effect.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// TicketNo returns a time-ordered, human-quotable complaint reference.
func TicketNo() string {
	if node == nil {
		if err := Init(1); err != nil {
			panic(fmt.Sprintf("snowflake init: %v", err))
		}
	}
	return "HC-" + node.Generate().Base36()
}

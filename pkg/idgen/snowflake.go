package idgen

import (
	"log"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init creates the snowflake node used for scan ledger IDs
func Init() {
	once.Do(func() {
		var err error
		node, err = snowflake.NewNode(1)
		if err != nil {
			log.Fatalf("Failed to init Snowflake: %v", err)
		}
	})
}

// GenerateID returns a new time-ordered snowflake ID
func GenerateID() int64 {
	Init()
	return node.Generate().Int64()
}

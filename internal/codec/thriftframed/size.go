package thriftframed

import (
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
)

// DefaultMaxFrameSize is the default frame size ceiling (16 MiB), matching
// the teacher's Thrift translator's default socket/transport sizing.
const DefaultMaxFrameSize = 16 * 1024 * 1024

// checkFramedSize enforces the two fatal size conditions from spec section
// 4.3.3: a negative size, or one exceeding maxFrameSize. Both return a
// TProtocolException the caller must treat as connection-fatal.
func checkFramedSize(size int32, maxFrameSize int32) error {
	if size < 0 {
		return thrift.NewTProtocolExceptionWithType(thrift.NEGATIVE_SIZE,
			fmt.Errorf("thriftframed: negative frame size %d", size))
	}
	if size > maxFrameSize {
		return thrift.NewTProtocolExceptionWithType(thrift.SIZE_LIMIT,
			fmt.Errorf("thriftframed: frame size %d exceeds max %d", size, maxFrameSize))
	}
	return nil
}

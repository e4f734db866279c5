package history

import (
	"sync"

	"github.com/sqids/sqids-go"
)

var (
	sq   *sqids.Sqids
	once sync.Once
)

// 历史记录对外不暴露自增主键，公开 ID 用 sqids 从行 ID 派生，
// 打乱字母表避免被顺序枚举。
func getSqids() *sqids.Sqids {
	once.Do(func() {
		var err error
		sq, err = sqids.New(sqids.Options{
			Alphabet:  "k3G7QAe51FCsiWrNOYBUwM6XzZvdLT4j9JhyHKg2cVbxfERq0mSoI8lDpunPat",
			MinLength: 6,
		})
		if err != nil {
			panic("sqids init failed: " + err.Error())
		}
	})
	return sq
}

func encodeID(id uint64) (string, error) {
	return getSqids().Encode([]uint64{id})
}

package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// 生成管理员口令的 bcrypt 哈希，填到 ADMIN_PASSWORD_HASH。
func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: hashpass <password>")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(hash))
}

package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"strings"

	"portfolio/internal/auth"
)

// 生成 ADMIN_PASSWORD_HASH 的小工具：
// 不传 --password 时会随机生成一个并一并打印。
func main() {
	var (
		password = flag.String("password", "", "管理员密码（留空则随机生成）")
	)
	flag.Parse()

	p := strings.TrimSpace(*password)
	generated := false
	if p == "" {
		random, err := randomPassword(18)
		if err != nil {
			log.Fatalf("generate password: %v", err)
		}
		p = random
		generated = true
	}

	hash, err := auth.HashPassword(p)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	if generated {
		fmt.Printf("generated password: %s\n", p)
	}
	fmt.Printf("ADMIN_PASSWORD_HASH=%s\n", hash)
}

func randomPassword(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

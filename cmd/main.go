package main

import "github.com/campushub/chat-service/cmd/server"

func main() {
	server.NewServer().Run()
}

package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/mj1618/uiarec/cmd"
	_ "github.com/mj1618/uiarec/internal/platform/windows"
)

func main() {
	cmd.Execute()
}

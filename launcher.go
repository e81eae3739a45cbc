//go:build ignore

// launcher поднимает сервер для локальной разработки и собирает schedctl.
//
// Запуск: go run launcher.go
// По умолчанию сервер стартует с in-memory хранилищем (DB_DRIVER=memory),
// чтобы не требовался PostgreSQL. DB_DRIVER=postgres go run launcher.go — с базой.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"
)

const healthURL = "http://127.0.0.1:8080/health"

func main() {
	fmt.Println("Запуск планировщика встреч...")

	env := os.Environ()
	if os.Getenv("DB_DRIVER") == "" {
		env = append(env, "DB_DRIVER=memory")
	}

	// запускаем сервер на фоне
	server := exec.Command("go", "run", "./cmd/server")
	server.Env = env
	server.Stdout = os.Stdout
	server.Stderr = os.Stderr

	if err := server.Start(); err != nil {
		fmt.Printf("Ошибка запуска сервера: %v\n", err)
		return
	}

	if !waitHealthy(30 * time.Second) {
		fmt.Println("Сервер не ответил на /health за 30s")
		server.Process.Kill()
		return
	}

	clientName := "schedctl"
	if runtime.GOOS == "windows" {
		clientName = "schedctl.exe"
	}
	// собираем клиента
	if _, err := os.Stat(clientName); os.IsNotExist(err) {
		fmt.Println("Сборка клиента...")
		build := exec.Command("go", "build", "-o", clientName, "./cmd/schedctl")
		build.Stdout = os.Stdout
		build.Stderr = os.Stderr
		if err := build.Run(); err != nil {
			fmt.Printf("Ошибка сборки клиента: %v\n", err)
		}
	}

	fmt.Println("Сервер запущен")
	fmt.Printf("Данный терминал не закрывай. В новом терминале: ./%s user list\n", clientName)

	server.Wait()
}

// waitHealthy опрашивает /health, пока сервер не ответит 200.
func waitHealthy(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: time.Second}
	for time.Now().Before(deadline) {
		res, err := client.Get(healthURL)
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				return true
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return false
}

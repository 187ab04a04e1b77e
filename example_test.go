package traverse_test

import (
	"fmt"
	"log"

	traverse "github.com/podhmo/go-traverse"
)

type server struct {
	name   string
	config *serverConfig
}

type serverConfig struct {
	port int
}

func (s *server) Rename(name string) string {
	old := s.name
	s.name = name
	return old
}

func Example() {
	acc, err := traverse.New()
	if err != nil {
		log.Fatal(err)
	}
	s := &server{name: "api", config: &serverConfig{port: 80}}

	port := acc.Create(s).Field("config").Field("port")
	if err := port.SetValue(8080); err != nil {
		log.Fatal(err)
	}
	fmt.Println(s.config.port)

	old, err := acc.Create(s).Method("Rename", "gateway")
	if err != nil {
		log.Fatal(err)
	}
	text, _, _ := old.Text()
	fmt.Println(text, s.name)

	_, ok, _ := acc.Create(s).Field("missing").Field("port").Text()
	fmt.Println(ok)
	// Output:
	// 8080
	// api gateway
	// false
}

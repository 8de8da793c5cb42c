package site

import (
	"gopkg.in/yaml.v3"
)

// composeFile models the generated compose definition. Struct-based marshal
// keeps field order stable so materialization stays byte-deterministic.
type composeFile struct {
	Services map[string]composeService `yaml:"services"`
	Volumes  map[string]*struct{}      `yaml:"volumes"`
	Networks map[string]*struct{}      `yaml:"networks"`
}

type composeService struct {
	Build       string            `yaml:"build,omitempty"`
	Image       string            `yaml:"image,omitempty"`
	Restart     string            `yaml:"restart"`
	Ports       []string          `yaml:"ports,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
	Volumes     []string          `yaml:"volumes,omitempty"`
	DependsOn   []string          `yaml:"depends_on,omitempty"`
	Networks    []string          `yaml:"networks"`
}

// renderCompose produces the docker-compose.yml content for the site.
// Ports 80/443 serve WordPress, 8080 serves phpMyAdmin. Database
// credentials are embedded in the environment blocks; that exposure is a
// documented constraint of the generated layout.
func renderCompose(p Params) ([]byte, error) {
	network := "wpnet"

	doc := composeFile{
		Services: map[string]composeService{
			"wordpress": {
				Build:   ".",
				Restart: "unless-stopped",
				Ports:   []string{"80:80", "443:443"},
				Environment: map[string]string{
					"WORDPRESS_DB_HOST":     "db",
					"WORDPRESS_DB_USER":     p.DBUser,
					"WORDPRESS_DB_PASSWORD": p.DBPassword,
					"WORDPRESS_DB_NAME":     p.DBName,
				},
				Volumes:   []string{"wp_data:/var/www/html"},
				DependsOn: []string{"db"},
				Networks:  []string{network},
			},
			"db": {
				Image:   "mariadb:10.11",
				Restart: "unless-stopped",
				Environment: map[string]string{
					"MYSQL_DATABASE":             p.DBName,
					"MYSQL_USER":                 p.DBUser,
					"MYSQL_PASSWORD":             p.DBPassword,
					"MYSQL_RANDOM_ROOT_PASSWORD": "1",
				},
				Volumes:  []string{"db_data:/var/lib/mysql"},
				Networks: []string{network},
			},
			"phpmyadmin": {
				Image:   "phpmyadmin:latest",
				Restart: "unless-stopped",
				Ports:   []string{"8080:80"},
				Environment: map[string]string{
					"PMA_HOST": "db",
				},
				DependsOn: []string{"db"},
				Networks:  []string{network},
			},
		},
		Volumes: map[string]*struct{}{
			"wp_data": nil,
			"db_data": nil,
		},
		Networks: map[string]*struct{}{
			network: nil,
		},
	}

	return yaml.Marshal(doc)
}

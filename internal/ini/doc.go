// Package ini parses INI-style host inventories into an inventory.Inventory.
//
// The format is line oriented:
//
//	web1 ansible_host=10.0.0.1    # before any header: group "ungrouped"
//
//	[web]                         # hosts of group "web"
//	web[01:03].example.com http_port=80
//
//	[web:vars]                    # variables of group "web"
//	ntp_server=ntp.example.com
//
//	[prod:children]               # child groups of group "prod"
//	web
//
// Lines starting with ';' or '#' are comments. The parser makes a single pass
// over the input. A group may be named by a ":vars" header or a ":children"
// line before its own section appears; such forward references are kept in a
// pending registry and reported if they are still unresolved at the end of
// the input. After the scan every top-level group is attached under "all".
//
// Every error carries the file name and 1-based line number and can be
// rendered with source context through Render.
package ini

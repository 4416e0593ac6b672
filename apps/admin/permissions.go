package main

import (
	"fmt"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/trezcool/coursehub/core/permission"
	"github.com/trezcool/coursehub/core/user"
)

// printPermissions prints the role x permission truth table.
func (cli *commandLine) printPermissions() error {
	typ := reflect.TypeOf(permission.Permissions{})

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	header := []string{"PERMISSION"}
	for _, r := range user.AllRoles {
		header = append(header, strings.ToUpper(string(r)))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	perms := make([]reflect.Value, 0, len(user.AllRoles))
	for _, r := range user.AllRoles {
		perms = append(perms, reflect.ValueOf(permission.ForRole(r)))
	}
	for i := 0; i < typ.NumField(); i++ {
		row := []string{strings.SplitN(typ.Field(i).Tag.Get("json"), ",", 2)[0]}
		for _, p := range perms {
			mark := "-"
			if p.Field(i).Bool() {
				mark = "x"
			}
			row = append(row, mark)
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/thomascherickal/june/cmd"

func main() {
	cmd.Execute()
}

// Command gridironctl inspects API quota and runs one-off Sportradar syncs and fetches.
package main

func main() {
	Execute()
}

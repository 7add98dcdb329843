// Command presence-sensor samples a PIR motion sensor, debounces it into an
// alarm state, and notifies webhooks, a visual alert, and MQTT on alarm
// trigger and clear.
package main

func main() {
	Execute()
}

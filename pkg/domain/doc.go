/*
Package domain contains the core data model of the Strider control-and-capture engine.

It defines lease tokens, camera positions and sources, raw sensor frames and decoded
images, poses and motion outcomes, and the lifecycle hooks emitted by the engine.
This package is kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - LeaseToken: the exclusive right to command the robot.
  - CameraPosition / CameraSource: the closed set of cameras and their named streams.
  - SensorFrame: a raw payload returned by the image service.
  - DecodedImage: a canonical pixel buffer derived from a SensorFrame.
  - GoalTransform / MotionOutcome: the target and the terminal state of a relative move.
*/
package domain
